// Package models holds the gorm row types behind the CRM tables. Domain
// aggregates carry no gorm tags; each model converts to and from its
// aggregate with ToDomain/FromDomain.
//
// Opportunity owners and customer contacts are embedded columns with a
// prefix (owner_*, contact_*). Quotes are a single JSON column. Ids are
// allocated from id_sequences, never by the database.
package models
