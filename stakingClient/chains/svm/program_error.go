package svm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
)

// programErrorFromRPC converts a preflight simulation failure into a
// *ProgramError carrying the program logs. Transport errors are returned as is.
func programErrorFromRPC(err error) error {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}

	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return err
	}
	txErr, hasErr := data["err"]
	if !hasErr || txErr == nil {
		return err
	}

	pe := programErrorFromStatus(txErr)
	pe.Message = rpcErr.Message
	if rawLogs, ok := data["logs"].([]interface{}); ok {
		for _, l := range rawLogs {
			if s, ok := l.(string); ok {
				pe.Logs = append(pe.Logs, s)
			}
		}
	}
	return pe
}

// programErrorFromStatus converts the err field of a transaction status,
// e.g. {"InstructionError":[0,{"Custom":6001}]}, into a *ProgramError.
func programErrorFromStatus(txErr interface{}) *tqerrors.ProgramError {
	pe := &tqerrors.ProgramError{Message: describeTxError(txErr)}
	if code, ok := customErrorCode(txErr); ok {
		pe.Code = &code
	}
	return pe
}

func describeTxError(txErr interface{}) string {
	if s, ok := txErr.(string); ok {
		return s
	}
	raw, err := json.Marshal(txErr)
	if err != nil {
		return fmt.Sprint(txErr)
	}
	return string(raw)
}

func customErrorCode(txErr interface{}) (int64, bool) {
	m, ok := txErr.(map[string]interface{})
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"].([]interface{})
	if !ok || len(ie) != 2 {
		return 0, false
	}
	detail, ok := ie[1].(map[string]interface{})
	if !ok {
		return 0, false
	}
	return toInt64(detail["Custom"])
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
