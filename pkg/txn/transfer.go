package txn

import (
	"encoding/base64"
	"fmt"

	"github.com/erc7824/solrpc/pkg/sign"
)

// SystemProgramID is the address of the native system program, the
// all-zero key. Callers pass it into Transfer.ProgramID explicitly.
var SystemProgramID = sign.PublicKey{}

// Instruction discriminants of the system program.
const (
	SystemCreateAccount uint32 = iota
	SystemAssign
	SystemTransfer
)

var (
	ErrSigningFailed = fmt.Errorf("transaction signing failed")
	ErrNoSender      = fmt.Errorf("transfer has no sender")
)

// Transfer describes a single-instruction lamport transfer.
type Transfer struct {
	From      sign.Signer
	To        sign.PublicKey
	Lamports  uint64
	Blockhash Hash
	ProgramID sign.PublicKey
}

// SignedTransaction is the wire form of a signed transaction.
type SignedTransaction struct {
	raw       []byte
	sigOffset int
	msgOffset int
}

// Bytes returns the full wire encoding: signatures section then message.
func (tx *SignedTransaction) Bytes() []byte { return tx.raw }

// Message returns the signed byte range, from the message header through
// the end of the instruction section.
func (tx *SignedTransaction) Message() []byte { return tx.raw[tx.msgOffset:] }

// Signature returns the sender's signature, which also identifies the
// transaction on the node.
func (tx *SignedTransaction) Signature() sign.Signature {
	var sig sign.Signature
	copy(sig[:], tx.raw[tx.sigOffset:tx.sigOffset+sign.SignatureSize])
	return sig
}

// Base64 returns the encoding submitted to sendTransaction.
func (tx *SignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(tx.raw)
}

// Layout sizes for the fixed transfer shape.
const (
	transferAccounts = 3  // sender, receiver, program
	transferDataLen  = 12 // u32 discriminant + u64 lamports
	transferTxSize   = 1 + sign.SignatureSize +
		3 +
		1 + transferAccounts*sign.PublicKeySize +
		HashSize +
		1 + 1 + 1 + 2 + 1 + transferDataLen
)

// BuildTransfer serializes and signs a transfer transaction.
//
// Field order is fixed by the node and must not change:
//
//	signatures   compact(1) | 64-byte slot
//	header       signers=1 | readonly signers=0 | readonly unsigned=1
//	accounts     compact(3) | sender | receiver | program
//	blockhash    32 bytes
//	instructions compact(1) | program index 2 | compact(2) 0 1 |
//	             compact(12) | u32le discriminant | u64le lamports
func BuildTransfer(t Transfer) (*SignedTransaction, error) {
	if t.From == nil {
		return nil, ErrNoSender
	}
	sender := t.From.PublicKey()

	enc := newEncoder(transferTxSize)

	enc.compactLen(1)
	sigOffset := enc.reserve(sign.SignatureSize)

	msgOffset := enc.pos()
	enc.u8(1) // signer accounts
	enc.u8(0) // read-only signed accounts
	enc.u8(1) // read-only unsigned accounts

	enc.compactLen(transferAccounts)
	enc.raw(sender.Bytes())
	enc.raw(t.To.Bytes())
	enc.raw(t.ProgramID.Bytes())

	enc.raw(t.Blockhash.Bytes())

	enc.compactLen(1)
	enc.u8(2) // program account index
	enc.compactLen(2)
	enc.u8(0) // sender
	enc.u8(1) // receiver
	enc.compactLen(transferDataLen)
	enc.u32(SystemTransfer)
	enc.u64(t.Lamports)

	sig, err := t.From.Sign(enc.buf[msgOffset:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	copy(enc.buf[sigOffset:], sig[:])

	return &SignedTransaction{
		raw:       enc.buf,
		sigOffset: sigOffset,
		msgOffset: msgOffset,
	}, nil
}
