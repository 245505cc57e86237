// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; each model here has ToDomain/FromDomain
// mappers and repositories work only with these models.
//
// Structure:
//   - base.go: BaseModel, AggregateModel and JSON column helpers
//   - identity.go: users
//   - lead.go: leads
//   - invoice.go: invoices, invoice items and the yearly number sequence
//   - content.go: services, pricing packages, portfolio items and content blocks
//   - blog.go: blog posts
//   - audit.go: website audits and outreach messages
package models
