package cognito

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SecretHash computes the message-authentication code Cognito requires on
// calls for app clients configured with a client secret:
// base64(HMAC-SHA256(clientSecret, identifier + clientID)).
//
// identifier is the username or email used in the call. Deterministic, no
// side effects; callers are responsible for supplying non-empty inputs.
func SecretHash(identifier, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(identifier + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
