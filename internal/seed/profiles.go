package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"spendsense-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// DemoAccount describes one account to open for a demo profile.
type DemoAccount struct {
	Type    models.AccountType `yaml:"type"`
	Balance string             `yaml:"balance"`
	Limit   string             `yaml:"limit,omitempty"`
}

// DemoProfile describes one synthetic user and the shape of their history.
type DemoProfile struct {
	UserId                string        `yaml:"user_id,omitempty"`
	Email                 string        `yaml:"email"`
	Name                  string        `yaml:"name"`
	Role                  string        `yaml:"role"`
	Persona               string        `yaml:"persona"`
	Accounts              []DemoAccount `yaml:"accounts"`
	TransactionCount      int           `yaml:"transaction_count"`
	Subscriptions         []string      `yaml:"subscriptions"`
	InterestAmount        string        `yaml:"interest_amount,omitempty"`
	SavingsTransferAmount string        `yaml:"savings_transfer_amount,omitempty"`
}

type ProfilesConfig struct {
	Profiles []DemoProfile `yaml:"profiles"`
}

// ResolvedUserId returns the configured id, or a stable id derived from the email
// so repeated seeding targets the same profile.
func (p DemoProfile) ResolvedUserId() string {
	if p.UserId != "" {
		return p.UserId
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("spendsense:profile:"+p.Email)).String()
}

// SubscriptionAmounts are the monthly prices of known subscription merchants.
var SubscriptionAmounts = map[string]decimal.Decimal{
	"Netflix":        decimal.RequireFromString("15.99"),
	"Spotify":        decimal.RequireFromString("10.99"),
	"Hulu":           decimal.RequireFromString("12.99"),
	"Disney+":        decimal.RequireFromString("10.99"),
	"Apple iCloud":   decimal.RequireFromString("9.99"),
	"NYT":            decimal.RequireFromString("17.00"),
	"Peloton":        decimal.RequireFromString("39.00"),
	"HelloFresh":     decimal.RequireFromString("69.99"),
	"Planet Fitness": decimal.RequireFromString("10.00"),
	"Adobe":          decimal.RequireFromString("52.99"),
}

// DefaultProfiles returns the three built-in demo users.
func DefaultProfiles() []DemoProfile {
	return []DemoProfile{
		{
			Email:   "hannah@demo.com",
			Name:    "Hannah Martinez",
			Role:    models.RoleConsumer,
			Persona: models.PersonaHighUtilization,
			Accounts: []DemoAccount{
				{Type: models.AccountTypeChecking, Balance: "850.00"},
				{Type: models.AccountTypeSavings, Balance: "1200.00"},
				{Type: models.AccountTypeCreditCard, Balance: "-3400.00", Limit: "5000.00"},
			},
			TransactionCount: 200,
			Subscriptions:    []string{"Netflix", "Spotify", "Planet Fitness", "Adobe"},
			InterestAmount:   "87.00",
		},
		{
			Email:   "sam@demo.com",
			Name:    "Sam Patel",
			Role:    models.RoleConsumer,
			Persona: models.PersonaSubscriptionHeavy,
			Accounts: []DemoAccount{
				{Type: models.AccountTypeChecking, Balance: "2400.00"},
				{Type: models.AccountTypeSavings, Balance: "5000.00"},
				{Type: models.AccountTypeCreditCard, Balance: "-800.00", Limit: "8000.00"},
			},
			TransactionCount: 180,
			Subscriptions:    []string{"Netflix", "Hulu", "Disney+", "Spotify", "Apple iCloud", "NYT", "Peloton", "HelloFresh"},
		},
		{
			Email:   "sarah@demo.com",
			Name:    "Sarah Chen",
			Role:    models.RoleConsumer,
			Persona: models.PersonaSavingsBuilder,
			Accounts: []DemoAccount{
				{Type: models.AccountTypeChecking, Balance: "3200.00"},
				{Type: models.AccountTypeHighYieldSavings, Balance: "8500.00"},
				{Type: models.AccountTypeCreditCard, Balance: "-400.00", Limit: "3000.00"},
			},
			TransactionCount:      150,
			SavingsTransferAmount: "500.00",
		},
	}
}

// LoadProfiles reads demo profiles from a YAML file. Relative paths resolve
// against the working directory.
func LoadProfiles(profilesFile string) ([]DemoProfile, error) {
	var profilesPath string
	if filepath.IsAbs(profilesFile) {
		profilesPath = profilesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		profilesPath = filepath.Join(wd, profilesFile)
	}

	data, err := os.ReadFile(profilesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", profilesFile, err)
	}

	return ParseProfiles(data)
}

// ParseProfiles decodes and validates a profiles document.
func ParseProfiles(data []byte) ([]DemoProfile, error) {
	var config ProfilesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse profiles: %w", err)
	}

	for i := range config.Profiles {
		if err := config.Profiles[i].validate(); err != nil {
			return nil, fmt.Errorf("profile at index %d: %w", i, err)
		}
		if config.Profiles[i].Role == "" {
			config.Profiles[i].Role = models.RoleConsumer
		}
	}

	return config.Profiles, nil
}

func (p DemoProfile) validate() error {
	if p.Email == "" {
		return fmt.Errorf("missing email")
	}
	if p.Persona != "" && !models.ValidPersona(p.Persona) {
		return fmt.Errorf("%s has unknown persona %q", p.Email, p.Persona)
	}
	if len(p.Accounts) == 0 {
		return fmt.Errorf("%s has no accounts", p.Email)
	}
	for _, a := range p.Accounts {
		if !a.Type.Valid() {
			return fmt.Errorf("%s has invalid account type %q", p.Email, a.Type)
		}
		if _, err := decimal.NewFromString(a.Balance); err != nil {
			return fmt.Errorf("%s has invalid %s balance %q", p.Email, a.Type, a.Balance)
		}
		if a.Limit != "" {
			if _, err := decimal.NewFromString(a.Limit); err != nil {
				return fmt.Errorf("%s has invalid %s limit %q", p.Email, a.Type, a.Limit)
			}
		}
	}
	for _, name := range p.Subscriptions {
		if _, ok := SubscriptionAmounts[name]; !ok {
			return fmt.Errorf("%s has unknown subscription %q", p.Email, name)
		}
	}
	for field, value := range map[string]string{
		"interest_amount":         p.InterestAmount,
		"savings_transfer_amount": p.SavingsTransferAmount,
	} {
		if value == "" {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%s has invalid %s %q", p.Email, field, value)
		}
	}
	if p.TransactionCount < 0 {
		return fmt.Errorf("%s has negative transaction_count", p.Email)
	}
	return nil
}
