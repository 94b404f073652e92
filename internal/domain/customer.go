package domain

import "time"

// Customer — покупатель из CRM-подсистемы. Ядро заказа только читает его.
type Customer struct {
	ID         string
	FamilyName string
	GivenName  string
	Phone      string
	// Deleted — флаг мягкого удаления; на удалённого клиента заказ оформить нельзя.
	Deleted   bool
	CreatedAt time.Time
}

// Active сообщает, может ли клиент участвовать в новых заказах.
func (c *Customer) Active() bool {
	return c != nil && !c.Deleted
}
