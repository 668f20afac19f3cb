package openrouter

import "testing"

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if c := NewClient(Config{BaseURL: "https://openrouter.ai/api/v1"}); c != nil {
		t.Fatal("client must not be built without an api key")
	}
	if c := NewClient(Config{APIKey: "sk-test", BaseURL: "https://openrouter.ai/api/v1"}); c == nil {
		t.Fatal("expected a client when an api key is set")
	}
}
