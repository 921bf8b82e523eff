// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column the Postgres repositories touch.
//
// Repositories build SQL from these definitions instead of string literals,
// so a rename in a migration is a one-line change here.
package schema
