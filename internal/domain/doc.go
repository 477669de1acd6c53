// Package domain holds the core entities shared across services: people and
// their school/district affiliations, email campaigns, and campaign
// recipients. All persistence lives in the external Postgres store; these
// types only shape and validate the rows.
package domain
