package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const revertPrefix = "execution reverted"

// dataError is implemented by JSON-RPC errors that carry the raw revert
// payload alongside the message.
type dataError interface {
	ErrorData() interface{}
}

// revertReason extracts the contract's revert string from an RPC error. The
// second return is false when the error is not a revert at all, so callers
// can keep treating it as a transport failure.
func revertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if de, ok := err.(dataError); ok {
		if reason, ok := unpackRevertData(de.ErrorData()); ok {
			return reason, true
		}
	}
	msg := err.Error()
	idx := strings.Index(msg, revertPrefix)
	if idx < 0 {
		return "", false
	}
	reason := strings.TrimPrefix(msg[idx+len(revertPrefix):], ":")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return revertPrefix, true
	}
	return reason, true
}

func unpackRevertData(data interface{}) (string, bool) {
	hexData, ok := data.(string)
	if !ok {
		return "", false
	}
	raw := common.FromHex(hexData)
	if len(raw) == 0 {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}

func ethereumCallMsg(from common.Address, tx *types.Transaction) ethereum.CallMsg {
	return ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
}
