package menu

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Category values known to the kitchen display.
const (
	CategoryDrink = "drink"
	CategoryPizza = "pizza"
	CategoryPasta = "pasta"
)

// Item is a catalog entry. Orders copy its name and price when a line is
// added and never read it again.
type Item struct {
	ID               uuid.UUID `json:"id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Category         string    `json:"category" bson:"category"`
	Price            float64   `json:"price" bson:"price"`
	Available        bool      `json:"available" bson:"available"`
	SupportsHalfHalf bool      `json:"supports_half_half" bson:"supports_half_half"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

func NewItem() *Item {
	return &Item{
		ID:        apt.GenerateNewID(),
		Available: true,
	}
}

func (i *Item) GetID() uuid.UUID {
	return i.ID
}

func (i *Item) ResourceType() string {
	return "menu-item"
}

func (i *Item) EnsureID() {
	if i.ID == uuid.Nil {
		i.ID = apt.GenerateNewID()
	}
}

func (i *Item) BeforeCreate() {
	i.EnsureID()
	i.CreatedAt = time.Now()
	i.UpdatedAt = time.Now()
}

func (i *Item) BeforeUpdate() {
	i.UpdatedAt = time.Now()
}
