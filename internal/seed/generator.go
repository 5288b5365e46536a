package seed

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"spendsense-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryDays bounds how far back random transactions are dated.
const HistoryDays = 90

type categorySpec struct {
	Name      string
	Min       float64
	Max       float64
	Weight    float64
	Merchants []string
}

// categories are drawn with the given weights; weights sum to 1.
var categories = []categorySpec{
	{"Food & Drink", 5, 75, 0.25, []string{"Starbucks", "Chipotle", "Whole Foods", "Trader Joe's", "Blue Bottle", "Sweetgreen"}},
	{"Shopping", 15, 200, 0.20, []string{"Amazon", "Target", "Best Buy", "IKEA", "Uniqlo"}},
	{"Bills", 30, 150, 0.25, []string{"Con Edison", "Verizon", "Comcast", "State Farm", "City Water"}},
	{"Subscriptions", 10, 30, 0.15, []string{"Audible", "Xbox Game Pass", "Dropbox", "Headspace"}},
	{"Transportation", 10, 50, 0.10, []string{"Uber", "Lyft", "Shell", "MTA"}},
	{"Entertainment", 8, 100, 0.05, []string{"AMC Theatres", "Ticketmaster", "Steam", "Bowlero"}},
}

// Generator produces deterministic synthetic history for a fixed seed and reference date.
type Generator struct {
	rng       *rand.Rand
	reference time.Time
}

func NewGenerator(seed int64, reference time.Time) *Generator {
	y, m, d := reference.UTC().Date()
	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		reference: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// Accounts builds the profile's accounts with ids stable across runs.
func (g *Generator) Accounts(profile DemoProfile, userId string) ([]models.Account, error) {
	accounts := make([]models.Account, 0, len(profile.Accounts))
	for i, spec := range profile.Accounts {
		balance, err := decimal.NewFromString(spec.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance for %s: %w", spec.Type, err)
		}

		account := models.Account{
			Id:          stableId("account", userId, string(spec.Type)),
			UserId:      userId,
			AccountType: spec.Type,
			Last4:       fmt.Sprintf("%04d", g.rng.Intn(10000)),
			Balance:     balance,
			CreatedAt:   g.reference.Add(time.Duration(i) * time.Second),
		}
		if spec.Limit != "" {
			limit, err := decimal.NewFromString(spec.Limit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit for %s: %w", spec.Type, err)
			}
			account.Limit = decimal.NewNullDecimal(limit)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Transactions builds the recurring charges first (subscriptions, interest,
// savings transfers) and fills up to TransactionCount with weighted random spend.
func (g *Generator) Transactions(profile DemoProfile, userId string, accounts []models.Account) []models.Transaction {
	checking := findAccount(accounts, models.AccountTypeChecking)
	savings := findAccount(accounts, models.AccountTypeSavings, models.AccountTypeHighYieldSavings)
	credit := findAccount(accounts, models.AccountTypeCreditCard)

	var txs []models.Transaction
	add := func(account *models.Account, date time.Time, merchant string, amount decimal.Decimal, category string) {
		if account == nil {
			return
		}
		txs = append(txs, models.Transaction{
			Id:        stableId("transaction", userId, fmt.Sprint(len(txs))),
			UserId:    userId,
			AccountId: account.Id,
			Date:      date,
			Merchant:  merchant,
			Amount:    amount,
			Category:  &category,
		})
	}

	subscriptionAccount := credit
	if subscriptionAccount == nil {
		subscriptionAccount = checking
	}
	for month := 0; month < 3; month++ {
		for _, name := range profile.Subscriptions {
			amount, ok := SubscriptionAmounts[name]
			if !ok {
				continue
			}
			add(subscriptionAccount, g.daysAgo(month*30), name, amount.Neg(), "Subscriptions")
		}
	}

	if profile.InterestAmount != "" && credit != nil {
		interest := decimal.RequireFromString(profile.InterestAmount)
		for month := 0; month < 3; month++ {
			add(credit, g.daysAgo(month*30+1), "Credit Card Interest", interest.Neg(), "Bills")
		}
	}

	if profile.SavingsTransferAmount != "" && checking != nil && savings != nil {
		transfer := decimal.RequireFromString(profile.SavingsTransferAmount)
		for month := 0; month < 3; month++ {
			date := g.daysAgo(month*30 + 5)
			add(checking, date, "Automatic Savings Transfer", transfer.Neg(), "Bills")
			add(savings, date, "Automatic Savings Transfer", transfer, "Bills")
		}
	}

	remaining := profile.TransactionCount - len(txs)
	if remaining <= 0 {
		return txs
	}

	dates := make([]time.Time, remaining)
	for i := range dates {
		dates[i] = g.daysAgo(g.rng.Intn(HistoryDays + 1))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	for _, date := range dates {
		spec := g.pickCategory()

		account := checking
		switch {
		case spec.Name == "Subscriptions" && credit != nil:
			account = credit
		case (spec.Name == "Bills" || spec.Name == "Shopping") && credit != nil && g.rng.Float64() < 0.6:
			account = credit
		case checking == nil:
			account = &accounts[0]
		}

		merchant := spec.Merchants[g.rng.Intn(len(spec.Merchants))]
		add(account, date, merchant, g.amount(spec).Neg(), spec.Name)
	}

	return txs
}

func (g *Generator) daysAgo(days int) time.Time {
	return g.reference.AddDate(0, 0, -days)
}

// pickCategory draws one category according to the weights.
func (g *Generator) pickCategory() categorySpec {
	r := g.rng.Float64()
	cumulative := 0.0
	for _, c := range categories {
		cumulative += c.Weight
		if r < cumulative {
			return c
		}
	}
	return categories[len(categories)-1]
}

// amount draws a value in [Min, Max] rounded to cents.
func (g *Generator) amount(spec categorySpec) decimal.Decimal {
	v := spec.Min + g.rng.Float64()*(spec.Max-spec.Min)
	return decimal.NewFromFloat(v).Round(2)
}

func findAccount(accounts []models.Account, types ...models.AccountType) *models.Account {
	for i := range accounts {
		for _, t := range types {
			if accounts[i].AccountType == t {
				return &accounts[i]
			}
		}
	}
	return nil
}

func stableId(kind string, parts ...string) string {
	name := "spendsense:" + kind
	for _, p := range parts {
		name += ":" + p
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
