// Package workflow implements the per-item production workflow engine: the
// ordered stage enumeration, the task lifecycle state machine, the stage
// completion gate, and the controller that drives a garment item from intake
// to delivery.
//
// The package owns the transition rules only. Persistence and task templates
// are supplied through the ItemStore, TaskStore, and TemplateProvider
// interfaces; internal/store and internal/templates provide the production
// implementations.
//
// Every mutating operation receives a staff.Actor for audit attribution and
// capability checks. The engine records identity; it never authenticates.
package workflow
