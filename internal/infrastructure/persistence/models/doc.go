// Package models holds the GORM rows of the hosted store. Domain types stay
// free of ORM tags; each row type converts with ToDomain and a
// ...FromDomain constructor.
//
// Tables: clients, onboarding_steps, timeline_items, recording_sessions,
// analytics_setup and activity_log. The schema itself is owned by the SQL
// files under migrations/; All lists the rows for AutoMigrate in tests.
package models
