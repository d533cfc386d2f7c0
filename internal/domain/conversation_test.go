package domain

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeGeneral, false},
		{"general", ModeGeneral, false},
		{"Specialist", ModeSpecialist, false},
		{"expert", ModeSpecialist, false},
		{"pirate", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConversation_Validate(t *testing.T) {
	ok := Conversation{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	twoSystems := Conversation{{Role: RoleSystem}, {Role: RoleSystem}, {Role: RoleUser}}
	if err := twoSystems.Validate(); err == nil {
		t.Error("Validate() = nil, want error for two system turns")
	}

	unknown := Conversation{{Role: Role("tool")}}
	if err := unknown.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown role")
	}
}

func TestProviderRequest_Validate(t *testing.T) {
	base := ProviderRequest{
		Model:       "m",
		Messages:    Conversation{{Role: RoleUser, Content: "hi"}},
		MaxTokens:   10,
		Temperature: 0.7,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	hot := base
	hot.Temperature = 1.5
	if err := hot.Validate(); err == nil {
		t.Error("temperature above 1 accepted")
	}

	streaming := base
	streaming.Stream = true
	if err := streaming.Validate(); err == nil {
		t.Error("stream=true accepted")
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	cfg := ProviderConfig{APIKey: "secret", Endpoint: "https://api.example.com", ModelID: "m"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	cfg.APIKey = "   "
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
	}

	cfg.APIKey = "secret"
	cfg.Endpoint = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("relative endpoint accepted")
	}
}

func TestResultConstructors(t *testing.T) {
	s := Success("hi")
	if s.Status != StatusSuccess || s.Role != RoleAssistant || !s.OK() {
		t.Errorf("Success() = %+v", s)
	}
	f := Failure(KindTimeout, "slow")
	if f.Status != StatusError || f.Role != RoleSystem || f.Kind != KindTimeout || f.OK() {
		t.Errorf("Failure() = %+v", f)
	}
}
