package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"userstream/pkg/core"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
func Sign(secret, payload string) (string, error) {
	if secret == "" {
		return "", core.NewError(core.ErrorTypeMissingSecret, "cannot sign without api secret").WithOp("sign")
	}
	return signHMAC(payload, secret), nil
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// signParams returns a copy of params with timestamp, recvWindow and signature
// added. The signature covers the canonical encoding of everything else.
func signParams(params core.Params, secret string, now time.Time, recvWindow time.Duration) (core.Params, error) {
	if secret == "" {
		return nil, core.NewError(core.ErrorTypeMissingSecret, "cannot sign without api secret").WithOp("sign")
	}

	signed := params.Clone()
	if signed == nil {
		signed = make(core.Params, 3)
	}
	delete(signed, core.SignatureParam)
	signed["timestamp"] = now.UnixMilli()
	if recvWindow > 0 {
		signed["recvWindow"] = recvWindow.Milliseconds()
	}

	signature, err := Sign(secret, signed.Encode())
	if err != nil {
		return nil, err
	}
	signed[core.SignatureParam] = signature
	return signed, nil
}
