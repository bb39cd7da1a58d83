package validate

import "testing"

func TestUsername(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"demouser", false},
		{"Trader99", false},
		{"abcdef", false},
		{"abcde", true},
		{"9trader", true},
		{"trader_one", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := Username(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("Username(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"demo@example.com", false},
		{"a.b+c@sub.example.org", false},
		{"demo@example", true},
		{"demo example@x.com", true},
		{"@example.com", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := Email(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("Email(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Password123!", false},
		{"Aa1-aaaa", false},
		{"Aa1-aaa", true},
		{"password123!", true},
		{"PASSWORD123!", true},
		{"Password!!!", true},
		{"Password123", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := Password(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("Password(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"demouser", false},
		{"demo@example.com", false},
		{"demo@", true},
		{"abc", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := Login(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("Login(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
