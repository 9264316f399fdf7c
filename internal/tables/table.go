package tables

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
)

const (
	TypeTable    = "table"
	TypeTakeaway = "takeaway"
	TypePizzaBar = "pizza_bar"
)

// Table is a seat (or takeaway slot) in the registry. CurrentOrderID points
// to at most one order that is neither paid nor cancelled.
type Table struct {
	ID             uuid.UUID          `json:"id" bson:"_id"`
	Number         string             `json:"number" bson:"number"`
	Floor          int                `json:"floor" bson:"floor"`
	Type           string             `json:"type" bson:"type"`
	Capacity       int                `json:"capacity" bson:"capacity"`
	Status         tablestatus.Status `json:"status" bson:"status"`
	CurrentOrderID *uuid.UUID         `json:"current_order_id" bson:"current_order_id"`
	Version        int64              `json:"version" bson:"version"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	CreatedBy      string             `json:"created_by" bson:"created_by"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
	UpdatedBy      string             `json:"updated_by" bson:"updated_by"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func NewTable() *Table {
	return &Table{
		ID:     apt.GenerateNewID(),
		Type:   TypeTable,
		Floor:  1,
		Status: tablestatus.Statuses.Available,
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) HasOrder() bool {
	return t.CurrentOrderID != nil && *t.CurrentOrderID != uuid.Nil
}

func (t *Table) PointsTo(orderID uuid.UUID) bool {
	return t.HasOrder() && *t.CurrentOrderID == orderID
}

// Claim marks the table occupied by orderID.
func (t *Table) Claim(orderID uuid.UUID, by string) {
	id := orderID
	t.Status = tablestatus.Statuses.Occupied
	t.CurrentOrderID = &id
	t.UpdatedBy = by
	t.BeforeUpdate()
}

// Release clears the pointer if it still refers to orderID and frees the
// table. It reports whether anything changed.
func (t *Table) Release(orderID uuid.UUID, by string) bool {
	if !t.PointsTo(orderID) {
		return false
	}
	t.ClearOrder(by)
	if t.Status == tablestatus.Statuses.Occupied {
		t.Status = tablestatus.Statuses.Available
	}
	return true
}

// ClearOrder drops the pointer without touching the status.
func (t *Table) ClearOrder(by string) {
	t.CurrentOrderID = nil
	t.UpdatedBy = by
	t.BeforeUpdate()
}

// Clone returns a copy that shares no pointers with t.
func (t *Table) Clone() *Table {
	c := *t
	if t.CurrentOrderID != nil {
		id := *t.CurrentOrderID
		c.CurrentOrderID = &id
	}
	return &c
}

// StatusView is the compact projection used by supervisor terminals.
type StatusView struct {
	TableID        uuid.UUID          `json:"table_id"`
	TableNumber    string             `json:"table_number"`
	Status         tablestatus.Status `json:"status"`
	HasOrder       bool               `json:"has_order"`
	CurrentOrderID *uuid.UUID         `json:"current_order_id,omitempty"`
}

func (t *Table) StatusView() StatusView {
	return StatusView{
		TableID:        t.ID,
		TableNumber:    t.Number,
		Status:         t.Status,
		HasOrder:       t.HasOrder(),
		CurrentOrderID: t.CurrentOrderID,
	}
}
