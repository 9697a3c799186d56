package erp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// credentials is the static OAuth1 token pair the gateway signs every
// request with. There is one credential set per process (spec §1 non-goal:
// no per-tenant isolation).
type credentials struct {
	accountID      string
	consumerKey    string
	consumerSecret string
	tokenID        string
	tokenSecret    string
}

// nonce returns a fresh random hex string for the oauth_nonce parameter.
func nonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// signRequest builds the Authorization header for one HTTP request,
// following OAuth1 HMAC-SHA256: the signature base string is
// METHOD&url-encoded(base-url)&url-encoded(sorted, percent-encoded param
// string), and the signing key is consumer_secret&token_secret. The realm
// (the ERP account id) rides in the header but is excluded from the
// signature base, per the ERP's variant of OAuth1.
func signRequest(method, baseURL string, query url.Values, creds credentials) (string, error) {
	n, err := nonce()
	if err != nil {
		return "", err
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	oauthParams := map[string]string{
		"oauth_consumer_key":     creds.consumerKey,
		"oauth_nonce":            n,
		"oauth_signature_method": "HMAC-SHA256",
		"oauth_timestamp":        timestamp,
		"oauth_token":            creds.tokenID,
		"oauth_version":          "1.0",
	}

	allParams := url.Values{}
	for k, v := range oauthParams {
		allParams.Set(k, v)
	}
	for k, vs := range query {
		for _, v := range vs {
			allParams.Add(k, v)
		}
	}

	baseString := method + "&" + url.QueryEscape(baseURL) + "&" + url.QueryEscape(encodeSorted(allParams))

	signingKey := creds.consumerSecret + "&" + creds.tokenSecret
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	oauthParams["oauth_signature"] = signature

	var header strings.Builder
	header.WriteString(fmt.Sprintf(`OAuth realm="%s"`, url.QueryEscape(creds.accountID)))
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&header, `, %s="%s"`, k, url.QueryEscape(oauthParams[k]))
	}
	return header.String(), nil
}

// encodeSorted renders params as key=value pairs, percent-encoded and
// sorted lexically by key then value, joined with '&' — the form OAuth1
// requires for the signature base string's parameter component.
func encodeSorted(params url.Values) string {
	type pair struct{ k, v string }
	var pairs []pair
	for k, vs := range params {
		for _, v := range vs {
			pairs = append(pairs, pair{url.QueryEscape(k), url.QueryEscape(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.k + "=" + p.v
	}
	return strings.Join(parts, "&")
}
