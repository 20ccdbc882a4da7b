package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/instruction-server/pkg/solana"
	"github.com/code-payments/instruction-server/pkg/solana/binary"
	"github.com/code-payments/instruction-server/pkg/solana/system"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// Command is the leading instruction tag. Only the commands built here are
// listed.
type Command byte

const (
	CommandInitializeMint Command = 0
	CommandTransfer       Command = 3
	CommandMintTo         Command = 7
)

var ErrInvalidAccountKey = errors.New("invalid account key")

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L24-L39
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) (solana.Instruction, error) {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	//   1. `[]` Rent sysvar
	//
	// InitializeMint {
	//   decimals: u8,
	//   mint_authority: Pubkey,
	//   freeze_authority: COption<Pubkey>,
	// }
	if err := checkKeys(mint, mintAuthority); err != nil {
		return solana.Instruction{}, err
	}
	if len(freezeAuthority) > 0 {
		if err := checkKeys(freezeAuthority); err != nil {
			return solana.Instruction{}, err
		}
	}

	data := make([]byte, 1+1+ed25519.PublicKeySize+binary.COptionKey32Size(freezeAuthority))

	var offset int
	binary.PutUint8(data[offset:], uint8(CommandInitializeMint), &offset)
	binary.PutUint8(data[offset:], decimals, &offset)
	binary.PutKey32(data[offset:], mintAuthority, &offset)
	binary.PutCOptionKey32(data[offset:], freezeAuthority, &offset)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), nil
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
	Decimals        byte
}

func DecompileInitializeMint(i solana.Instruction) (*DecompiledInitializeMint, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandInitializeMint)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(system.RentSysVar, i.Accounts[1].PublicKey) {
		return nil, errors.New("invalid rent program")
	}
	if len(i.Data) != 35 && len(i.Data) != 67 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	v := &DecompiledInitializeMint{
		Mint: i.Accounts[0].PublicKey,
	}

	offset := 1
	binary.GetUint8(i.Data[offset:], &v.Decimals, &offset)
	binary.GetKey32(i.Data[offset:], &v.MintAuthority, &offset)
	if err := binary.GetCOptionKey32(i.Data[offset:], &v.FreezeAuthority, &offset); err != nil {
		return nil, errors.Wrap(err, "invalid freeze authority")
	}
	if offset != len(i.Data) {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return v, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L156-L168
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) (solana.Instruction, error) {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	if err := checkKeys(mint, dest, authority); err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		ProgramKey,
		amountData(CommandMintTo, amount),
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	), nil
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecompileMintTo(i solana.Instruction) (*DecompiledMintTo, error) {
	amount, err := decompileAmountInstruction(i, CommandMintTo)
	if err != nil {
		return nil, err
	}

	return &DecompiledMintTo{
		Mint:        i.Accounts[0].PublicKey,
		Destination: i.Accounts[1].PublicKey,
		Authority:   i.Accounts[2].PublicKey,
		Amount:      amount,
	}, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L76-L91
func Transfer(source, dest, owner ed25519.PublicKey, amount uint64) (solana.Instruction, error) {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[writable]` The destination account.
	//   2. `[signer]` The source account's owner/delegate.
	if err := checkKeys(source, dest, owner); err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		ProgramKey,
		amountData(CommandTransfer, amount),
		solana.NewAccountMeta(source, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	), nil
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
	Amount      uint64
}

func DecompileTransfer(i solana.Instruction) (*DecompiledTransfer, error) {
	amount, err := decompileAmountInstruction(i, CommandTransfer)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		Source:      i.Accounts[0].PublicKey,
		Destination: i.Accounts[1].PublicKey,
		Owner:       i.Accounts[2].PublicKey,
		Amount:      amount,
	}, nil
}

func amountData(command Command, amount uint64) []byte {
	data := make([]byte, 1+8)

	var offset int
	binary.PutUint8(data[offset:], uint8(command), &offset)
	binary.PutUint64(data[offset:], amount, &offset)

	return data
}

func decompileAmountInstruction(i solana.Instruction, command Command) (uint64, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return 0, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(command)}) {
		return 0, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 3 {
		return 0, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 9 {
		return 0, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	var amount uint64
	offset := 1
	binary.GetUint64(i.Data[offset:], &amount, &offset)
	return amount, nil
}

func checkKeys(keys ...ed25519.PublicKey) error {
	for _, key := range keys {
		if len(key) != ed25519.PublicKeySize {
			return errors.Wrapf(ErrInvalidAccountKey, "expected %d bytes, got %d", ed25519.PublicKeySize, len(key))
		}
	}
	return nil
}
