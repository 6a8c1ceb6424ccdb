package auth

import (
	"context"
	"fmt"
	"strings"
)

// Identity is the per-request chat identity. There is no tenant model
// beyond this; authorization stops at "which chat asked".
type Identity struct {
	ChatID string
}

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

// StaticAPIKeyValidator maps API keys to chat identities from a
// comma-separated "key:chat_id" spec.
type StaticAPIKeyValidator struct {
	keys map[string]Identity
}

func NewStaticAPIKeyValidator(spec string) (*StaticAPIKeyValidator, error) {
	validator := &StaticAPIKeyValidator{keys: map[string]Identity{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid static key entry %q: expected key:chat_id", entry)
		}
		key := strings.TrimSpace(parts[0])
		chatID := strings.TrimSpace(parts[1])
		if key == "" || chatID == "" {
			return nil, fmt.Errorf("invalid static key entry %q: empty key/chat id", entry)
		}
		validator.keys[key] = Identity{ChatID: chatID}
	}

	return validator, nil
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	identity, ok := v.keys[apiKey]
	return identity, ok
}
