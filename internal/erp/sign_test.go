package erp

import (
	"net/url"
	"strings"
	"testing"
)

func testCreds() credentials {
	return credentials{
		accountID:      "1234567",
		consumerKey:    "ck",
		consumerSecret: "cs",
		tokenID:        "tid",
		tokenSecret:    "ts",
	}
}

func TestSignRequest_HeaderCarriesRealmAndRequiredParams(t *testing.T) {
	header, err := signRequest("POST", "https://1234567.suitetalk.api.netsuite.com/services/rest/query/v1/suiteql", url.Values{}, testCreds())
	if err != nil {
		t.Fatalf("signRequest: %v", err)
	}
	if !strings.HasPrefix(header, `OAuth realm="1234567"`) {
		t.Errorf("expected realm prefix, got: %s", header)
	}
	for _, want := range []string{"oauth_consumer_key=", "oauth_nonce=", "oauth_signature_method=\"HMAC-SHA256\"",
		"oauth_timestamp=", "oauth_token=", "oauth_version=\"1.0\"", "oauth_signature="} {
		if !strings.Contains(header, want) {
			t.Errorf("expected header to contain %q, got: %s", want, header)
		}
	}
}

func TestSignRequest_DistinctNoncesAcrossCalls(t *testing.T) {
	h1, err := signRequest("GET", "https://x.example.com/q", url.Values{}, testCreds())
	if err != nil {
		t.Fatalf("signRequest: %v", err)
	}
	h2, err := signRequest("GET", "https://x.example.com/q", url.Values{}, testCreds())
	if err != nil {
		t.Fatalf("signRequest: %v", err)
	}
	if h1 == h2 {
		t.Error("expected distinct signatures across calls due to fresh nonce/timestamp")
	}
}

func TestEncodeSorted_OrdersByKeyThenValue(t *testing.T) {
	params := url.Values{}
	params.Set("b", "2")
	params.Add("a", "2")
	params.Add("a", "1")

	got := encodeSorted(params)
	want := "a=1&a=2&b=2"
	if got != want {
		t.Errorf("encodeSorted = %q, want %q", got, want)
	}
}

func TestEncodeSorted_PercentEncodesReservedCharacters(t *testing.T) {
	params := url.Values{}
	params.Set("q", "a b&c")

	got := encodeSorted(params)
	if strings.Contains(got, " ") || strings.Contains(got, "&c") {
		t.Errorf("expected reserved characters to be percent-encoded, got: %s", got)
	}
}

func TestNonce_ReturnsDistinctValues(t *testing.T) {
	a, err := nonce()
	if err != nil {
		t.Fatalf("nonce: %v", err)
	}
	b, err := nonce()
	if err != nil {
		t.Fatalf("nonce: %v", err)
	}
	if a == b {
		t.Error("expected distinct nonces across calls")
	}
	if len(a) != 32 { // 16 bytes hex-encoded
		t.Errorf("nonce length = %d, want 32", len(a))
	}
}
