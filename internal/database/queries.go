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

package database

const (
	// Profile queries
	queryGetProfiles = `
		SELECT id, email, name, role, created_at
		FROM profiles
		ORDER BY created_at, rowid`

	queryInsertProfile = `
		INSERT OR IGNORE INTO profiles (id, email, name, role) VALUES (?, ?, ?, ?)`

	queryGetProfileById = `
		SELECT id, email, name, role, created_at
		FROM profiles
		WHERE id = ?`

	queryGetProfileByEmail = `
		SELECT id, email, name, role, created_at
		FROM profiles
		WHERE email = ?`

	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, user_id, account_type, last4, balance, credit_limit)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetAccountsForUser = `
		SELECT id, user_id, account_type, last4, balance, credit_limit, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY rowid`

	// Transaction queries
	queryGetAccountOwner = `
		SELECT user_id FROM accounts WHERE id = ?`

	queryInsertTransaction = `
		INSERT OR IGNORE INTO transactions (id, user_id, account_id, date, merchant, amount, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionsForUser = `
		SELECT id, user_id, account_id, date, merchant, amount, category, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date, rowid`

	queryGetTransactionsForUserInRange = `
		SELECT id, user_id, account_id, date, merchant, amount, category, created_at
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date, rowid`

	// Filtered listing; the WHERE clause is assembled in buildTransactionFilter
	queryCountTransactions = `
		SELECT COUNT(*)
		FROM transactions`

	querySelectTransactions = `
		SELECT id, user_id, account_id, date, merchant, amount, category, created_at
		FROM transactions`

	queryOrderTransactionsPage = `
		ORDER BY date DESC, rowid DESC
		LIMIT ? OFFSET ?`

	// Job record queries
	queryInsertComputedFeature = `
		INSERT INTO computed_features (id, user_id, time_window, signal_type, signal_value, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetComputedFeatures = `
		SELECT id, user_id, time_window, signal_type, signal_value, computed_at
		FROM computed_features
		WHERE user_id = ?
		ORDER BY computed_at DESC, rowid DESC`

	queryInsertPersonaAssignment = `
		INSERT INTO persona_assignments (id, user_id, time_window, persona, assigned_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetPersonaAssignments = `
		SELECT id, user_id, time_window, persona, assigned_at
		FROM persona_assignments
		WHERE user_id = ?
		ORDER BY assigned_at DESC, rowid DESC`

	queryInsertRecommendation = `
		INSERT INTO recommendations (id, user_id, type, title, rationale, shown_at, clicked)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetRecommendations = `
		SELECT id, user_id, type, title, rationale, shown_at, clicked, created_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`
)
