/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the kinds of accounts a profile can hold
type AccountType string

const (
	AccountTypeChecking         AccountType = "checking"
	AccountTypeSavings          AccountType = "savings"
	AccountTypeHighYieldSavings AccountType = "high_yield_savings"
	AccountTypeCreditCard       AccountType = "credit_card"
)

// Valid reports whether t is one of the known account types
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeHighYieldSavings, AccountTypeCreditCard:
		return true
	}
	return false
}

const (
	RoleConsumer = "consumer"
	RoleOperator = "operator"
)

// Profile represents a user of the platform
type Profile struct {
	UserId    string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// Account represents a bank or card account owned by a profile.
// Credit card balances are negative when money is owed.
type Account struct {
	Id          string              `db:"id"`
	UserId      string              `db:"user_id"`
	AccountType AccountType         `db:"account_type"`
	Last4       string              `db:"last4"`
	Balance     decimal.Decimal     `db:"balance"`
	Limit       decimal.NullDecimal `db:"credit_limit"`
	CreatedAt   time.Time           `db:"created_at"`
}

// Transaction represents a single posted transaction. Negative amounts are debits.
type Transaction struct {
	Id        string          `db:"id"`
	UserId    string          `db:"user_id"`
	AccountId string          `db:"account_id"`
	Date      time.Time       `db:"date"`
	Merchant  string          `db:"merchant"`
	Amount    decimal.Decimal `db:"amount"`
	Category  *string         `db:"category"`
	CreatedAt time.Time       `db:"created_at"`
}

// IsDebit reports whether the transaction is spend
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

const (
	TimeWindow30d  = "30d"
	TimeWindow90d  = "90d"
	TimeWindow180d = "180d"
)

const (
	PersonaHighUtilization        = "high_utilization"
	PersonaSubscriptionHeavy      = "subscription_heavy"
	PersonaVariableIncomeBudgeter = "variable_income_budgeter"
	PersonaSavingsBuilder         = "savings_builder"
	PersonaGeneralWellness        = "general_wellness"
)

// ValidPersona reports whether p is one of the known personas
func ValidPersona(p string) bool {
	switch p {
	case PersonaHighUtilization, PersonaSubscriptionHeavy, PersonaVariableIncomeBudgeter, PersonaSavingsBuilder, PersonaGeneralWellness:
		return true
	}
	return false
}

// ComputedFeature is a persisted behavioral signal for a user and window
type ComputedFeature struct {
	Id          string          `db:"id"`
	UserId      string          `db:"user_id"`
	TimeWindow  string          `db:"time_window"`
	SignalType  string          `db:"signal_type"`
	SignalValue json.RawMessage `db:"signal_value"`
	ComputedAt  time.Time       `db:"computed_at"`
}

// PersonaAssignment records the persona a user was placed in for a window
type PersonaAssignment struct {
	Id         string    `db:"id"`
	UserId     string    `db:"user_id"`
	TimeWindow string    `db:"time_window"`
	Persona    string    `db:"persona"`
	AssignedAt time.Time `db:"assigned_at"`
}

const (
	RecommendationTypeEducation = "education"
	RecommendationTypeOffer     = "offer"
)

// Recommendation is a piece of content surfaced to a user
type Recommendation struct {
	Id        string     `db:"id"`
	UserId    string     `db:"user_id"`
	Type      string     `db:"type"`
	Title     string     `db:"title"`
	Rationale string     `db:"rationale"`
	ShownAt   *time.Time `db:"shown_at"`
	Clicked   bool       `db:"clicked"`
	CreatedAt time.Time  `db:"created_at"`
}
