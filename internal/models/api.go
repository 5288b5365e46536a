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

// ErrorResponse is the body returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// TransactionEntry is a transaction as exposed over the API
type TransactionEntry struct {
	Id        string  `json:"id"`
	UserId    string  `json:"user_id"`
	AccountId string  `json:"account_id"`
	Date      string  `json:"date"`
	Merchant  string  `json:"merchant"`
	Amount    float64 `json:"amount"`
	Category  *string `json:"category"`
}

// Pagination describes the page returned by a listing endpoint
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type TransactionsData struct {
	Transactions []TransactionEntry `json:"transactions"`
	Pagination   Pagination         `json:"pagination"`
}

type ResponseMeta struct {
	Timestamp string `json:"timestamp"`
}

// TransactionsResponse is the body of GET /users/{user_id}/transactions
type TransactionsResponse struct {
	Data TransactionsData `json:"data"`
	Meta ResponseMeta     `json:"meta"`
}

// ProfileResponse is the body of GET /users/{user_id}/profile
type ProfileResponse struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}
