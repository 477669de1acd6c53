// Package reconcile merges imported spreadsheet rows into the existing
// district/school/person records without creating duplicates.
//
// The service layer contains all matching and upsert ordering logic. It
// depends on repository interfaces defined in this package and should never
// import from api/. Repository implementations live in repository/postgres.
package reconcile
