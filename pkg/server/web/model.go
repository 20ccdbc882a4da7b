package web

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/instruction-server/pkg/common"
	"github.com/code-payments/instruction-server/pkg/pointer"
	"github.com/code-payments/instruction-server/pkg/solana"
)

var (
	ErrInvalidPublicKeys           = errors.New("Invalid public key(s)")
	ErrInvalidAmount               = errors.New("Amount must be greater than zero")
	ErrMissingFields               = errors.New("Missing required fields")
	ErrInvalidSecret               = errors.New("Invalid secret key")
	ErrInvalidSignatureOrPublicKey = errors.New("Invalid signature or public key")
	ErrInvalidRequestBody          = errors.New("invalid request body")
	ErrOwnerOffCurve               = errors.New("Owner is not on the ed25519 curve")

	errHttpGetExpected  = errors.New("http get expected")
	errHttpPostExpected = errors.New("http post expected")
)

// newBuilderError surfaces an instruction builder rejection along with the
// builder's reason
func newBuilderError(err error) error {
	return errors.Errorf("Failed to create instruction: %s", err.Error())
}

type createTokenRequest struct {
	mintAuthority *common.Account
	mint          *common.Account
	decimals      uint8
}

func newCreateTokenRequestFromHttpContext(r *http.Request, maxBodySize int64) (*createTokenRequest, error) {
	httpRequestBody := struct {
		MintAuthority string `json:"mintAuthority"`
		Mint          string `json:"mint"`
		Decimals      *uint8 `json:"decimals"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	accounts, err := parsePublicKeys(httpRequestBody.MintAuthority, httpRequestBody.Mint)
	if err != nil {
		return nil, err
	}

	if httpRequestBody.Decimals == nil {
		return nil, ErrMissingFields
	}

	return &createTokenRequest{
		mintAuthority: accounts[0],
		mint:          accounts[1],
		decimals:      *httpRequestBody.Decimals,
	}, nil
}

type mintTokenRequest struct {
	mint        *common.Account
	destination *common.Account
	authority   *common.Account
	amount      uint64
}

func newMintTokenRequestFromHttpContext(r *http.Request, maxBodySize int64) (*mintTokenRequest, error) {
	httpRequestBody := struct {
		Mint        string  `json:"mint"`
		Destination string  `json:"destination"`
		Authority   string  `json:"authority"`
		Amount      *uint64 `json:"amount"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	accounts, err := parsePublicKeys(httpRequestBody.Mint, httpRequestBody.Destination, httpRequestBody.Authority)
	if err != nil {
		return nil, err
	}

	amount, err := requirePositiveAmount(httpRequestBody.Amount)
	if err != nil {
		return nil, err
	}

	return &mintTokenRequest{
		mint:        accounts[0],
		destination: accounts[1],
		authority:   accounts[2],
		amount:      amount,
	}, nil
}

type signMessageRequest struct {
	message []byte
	signer  *common.Account
}

func newSignMessageRequestFromHttpContext(r *http.Request, maxBodySize int64) (*signMessageRequest, error) {
	httpRequestBody := struct {
		Message string `json:"message"`
		Secret  string `json:"secret"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	if len(httpRequestBody.Message) == 0 || len(httpRequestBody.Secret) == 0 {
		return nil, ErrMissingFields
	}

	signer, err := common.NewAccountFromSecretString(httpRequestBody.Secret)
	if err != nil {
		return nil, ErrInvalidSecret
	}

	return &signMessageRequest{
		message: []byte(httpRequestBody.Message),
		signer:  signer,
	}, nil
}

type verifyMessageRequest struct {
	message   []byte
	signature solana.Signature
	publicKey *common.Account

	// Echoed back exactly as received
	rawMessage   string
	rawPublicKey string
}

func newVerifyMessageRequestFromHttpContext(r *http.Request, maxBodySize int64) (*verifyMessageRequest, error) {
	httpRequestBody := struct {
		Message   string `json:"message"`
		Signature string `json:"signature"`
		Pubkey    string `json:"pubkey"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	if len(httpRequestBody.Message) == 0 || len(httpRequestBody.Signature) == 0 || len(httpRequestBody.Pubkey) == 0 {
		return nil, ErrMissingFields
	}

	publicKey, err := common.NewAccountFromPublicKeyString(httpRequestBody.Pubkey)
	if err != nil {
		return nil, ErrInvalidSignatureOrPublicKey
	}

	signature, err := common.NewSignatureFromBase64(httpRequestBody.Signature)
	if err != nil {
		return nil, ErrInvalidSignatureOrPublicKey
	}

	return &verifyMessageRequest{
		message:      []byte(httpRequestBody.Message),
		signature:    signature,
		publicKey:    publicKey,
		rawMessage:   httpRequestBody.Message,
		rawPublicKey: httpRequestBody.Pubkey,
	}, nil
}

type sendSolRequest struct {
	from     *common.Account
	to       *common.Account
	lamports uint64
}

func newSendSolRequestFromHttpContext(r *http.Request, maxBodySize int64) (*sendSolRequest, error) {
	httpRequestBody := struct {
		From     string  `json:"from"`
		To       string  `json:"to"`
		Lamports *uint64 `json:"lamports"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	accounts, err := parsePublicKeys(httpRequestBody.From, httpRequestBody.To)
	if err != nil {
		return nil, err
	}

	lamports, err := requirePositiveAmount(httpRequestBody.Lamports)
	if err != nil {
		return nil, err
	}

	return &sendSolRequest{
		from:     accounts[0],
		to:       accounts[1],
		lamports: lamports,
	}, nil
}

type sendTokenRequest struct {
	source      *common.Account
	destination *common.Account
	mint        *common.Account
	owner       *common.Account
	amount      uint64
}

func newSendTokenRequestFromHttpContext(r *http.Request, maxBodySize int64) (*sendTokenRequest, error) {
	httpRequestBody := struct {
		Destination string  `json:"destination"`
		Mint        string  `json:"mint"`
		Owner       string  `json:"owner"`
		Amount      *uint64 `json:"amount"`
		Source      *string `json:"source"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	// Without an explicit source, the destination token account is debited
	accounts, err := parsePublicKeys(
		httpRequestBody.Destination,
		httpRequestBody.Mint,
		httpRequestBody.Owner,
		*pointer.StringOrDefault(httpRequestBody.Source, httpRequestBody.Destination),
	)
	if err != nil {
		return nil, err
	}

	amount, err := requirePositiveAmount(httpRequestBody.Amount)
	if err != nil {
		return nil, err
	}

	return &sendTokenRequest{
		source:      accounts[3],
		destination: accounts[0],
		mint:        accounts[1],
		owner:       accounts[2],
		amount:      amount,
	}, nil
}

type associatedAccountRequest struct {
	owner              *common.Account
	mint               *common.Account
	allowOwnerOffCurve bool
}

func newAssociatedAccountRequestFromHttpContext(r *http.Request, maxBodySize int64) (*associatedAccountRequest, error) {
	httpRequestBody := struct {
		Owner              string `json:"owner"`
		Mint               string `json:"mint"`
		AllowOwnerOffCurve bool   `json:"allowOwnerOffCurve"`
	}{}

	if err := decodeJsonBody(r, maxBodySize, &httpRequestBody); err != nil {
		return nil, err
	}

	accounts, err := parsePublicKeys(httpRequestBody.Owner, httpRequestBody.Mint)
	if err != nil {
		return nil, err
	}

	return &associatedAccountRequest{
		owner:              accounts[0],
		mint:               accounts[1],
		allowOwnerOffCurve: httpRequestBody.AllowOwnerOffCurve,
	}, nil
}

func decodeJsonBody(r *http.Request, maxBodySize int64, dst any) error {
	if r.Body == nil {
		return ErrInvalidRequestBody
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil || int64(len(body)) > maxBodySize {
		return ErrInvalidRequestBody
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return ErrInvalidRequestBody
	}
	if err := checkFieldNameCase(body, dst); err != nil {
		return err
	}
	return nil
}

// checkFieldNameCase rejects keys that only match a field of dst when case
// is ignored. encoding/json would otherwise accept "FROM" for "from".
// Unknown keys are still ignored.
func checkFieldNameCase(body []byte, dst any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ErrInvalidRequestBody
	}

	declared := jsonFieldNames(dst)
	for key := range fields {
		if _, ok := declared[key]; ok {
			continue
		}
		for name := range declared {
			if strings.EqualFold(key, name) {
				return ErrInvalidRequestBody
			}
		}
	}
	return nil
}

func jsonFieldNames(dst any) map[string]struct{} {
	names := make(map[string]struct{})

	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		names[name] = struct{}{}
	}
	return names
}

func parsePublicKeys(values ...string) ([]*common.Account, error) {
	accounts := make([]*common.Account, len(values))
	for i, value := range values {
		account, err := common.NewAccountFromPublicKeyString(value)
		if err != nil {
			return nil, ErrInvalidPublicKeys
		}
		accounts[i] = account
	}
	return accounts, nil
}

func requirePositiveAmount(amount *uint64) (uint64, error) {
	if amount == nil {
		return 0, ErrMissingFields
	}
	if *amount == 0 {
		return 0, ErrInvalidAmount
	}
	return *amount, nil
}
