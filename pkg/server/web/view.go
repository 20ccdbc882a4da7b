package web

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/code-payments/instruction-server/pkg/common"
	"github.com/code-payments/instruction-server/pkg/pointer"
	"github.com/code-payments/instruction-server/pkg/solana"
)

type healthView struct {
	Status string `json:"status"`
}

type keypairView struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

type accountMetaView struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable *bool  `json:"isWritable,omitempty"`
}

// createTokenView keys accounts by their base58 public key
type createTokenView struct {
	ProgramId       string                     `json:"program_id"`
	Accounts        map[string]accountMetaView `json:"accounts"`
	InstructionData string                     `json:"instruction_data"`
}

type mintTokenView struct {
	ProgramId       string            `json:"program_id"`
	Accounts        []accountMetaView `json:"accounts"`
	InstructionData string            `json:"instruction_data"`
}

type sendSolView struct {
	ProgramId       string   `json:"program_id"`
	Accounts        []string `json:"accounts"`
	InstructionData string   `json:"instruction_data"`
}

// sendTokenView never reports isWritable
type sendTokenView struct {
	ProgramId       string            `json:"program_id"`
	Accounts        []accountMetaView `json:"accounts"`
	InstructionData string            `json:"instruction_data"`
}

type signMessageView struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
}

type verifyMessageView struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Pubkey  string `json:"pubkey"`
}

type associatedAccountView struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

func toKeypairView(account *common.Account) keypairView {
	return keypairView{
		Pubkey: account.PublicKey().ToBase58(),
		Secret: account.ToSecretString(),
	}
}

func toCreateTokenView(ix solana.Instruction) createTokenView {
	accounts := make(map[string]accountMetaView, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		view := toAccountMetaView(meta, true)
		accounts[view.Pubkey] = view
	}

	return createTokenView{
		ProgramId:       encodeKey(ix.Program),
		Accounts:        accounts,
		InstructionData: encodeInstructionData(ix.Data),
	}
}

func toMintTokenView(ix solana.Instruction) mintTokenView {
	return mintTokenView{
		ProgramId:       encodeKey(ix.Program),
		Accounts:        toAccountMetaViews(ix.Accounts, true),
		InstructionData: encodeInstructionData(ix.Data),
	}
}

func toSendSolView(ix solana.Instruction) sendSolView {
	accounts := make([]string, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		accounts[i] = encodeKey(meta.PublicKey)
	}

	return sendSolView{
		ProgramId:       encodeKey(ix.Program),
		Accounts:        accounts,
		InstructionData: encodeInstructionData(ix.Data),
	}
}

func toSendTokenView(ix solana.Instruction) sendTokenView {
	return sendTokenView{
		ProgramId:       encodeKey(ix.Program),
		Accounts:        toAccountMetaViews(ix.Accounts, false),
		InstructionData: encodeInstructionData(ix.Data),
	}
}

func toSignMessageView(signer *common.Account, message []byte, signature solana.Signature) signMessageView {
	return signMessageView{
		Signature: base64.StdEncoding.EncodeToString(signature[:]),
		PublicKey: signer.PublicKey().ToBase58(),
		Message:   string(message),
	}
}

func toAccountMetaViews(metas []solana.AccountMeta, includeWritable bool) []accountMetaView {
	views := make([]accountMetaView, len(metas))
	for i, meta := range metas {
		views[i] = toAccountMetaView(meta, includeWritable)
	}
	return views
}

func toAccountMetaView(meta solana.AccountMeta, includeWritable bool) accountMetaView {
	return accountMetaView{
		Pubkey:     encodeKey(meta.PublicKey),
		IsSigner:   meta.IsSigner,
		IsWritable: pointer.BoolIfValid(includeWritable, meta.IsWritable),
	}
}

func encodeKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}

func encodeInstructionData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
