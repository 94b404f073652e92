package domain

import "time"

const basisPointsScale = 10000

// Promotion — промоакция с процентной скидкой. Скидка хранится в базисных
// пунктах (1000 bp = 10%), чтобы вся денежная арифметика оставалась целочисленной.
type Promotion struct {
	ID   string
	Name string
	// DiscountBasisPoints — размер скидки в базисных пунктах, 0..10000.
	DiscountBasisPoints int32
	// ConditionMinor — минимальная сумма заказа до скидки, при которой акция применима.
	ConditionMinor int64
	// Окно действия акции: применима, пока StartAt <= now <= EndAt.
	StartAt time.Time
	EndAt   time.Time
	// Quantity — оставшееся число применений; каждое успешное применение
	// уменьшает его ровно на 1 в рамках того же коммита, что и заказ.
	Quantity  int32
	CreatedAt time.Time
}

// ActiveAt сообщает, попадает ли момент времени в окно действия акции.
func (p *Promotion) ActiveAt(now time.Time) bool {
	return !now.Before(p.StartAt) && !now.After(p.EndAt)
}

// EligibleFor проверяет все условия применимости: окно действия,
// остаток применений и порог по сумме заказа до скидки.
func (p *Promotion) EligibleFor(subtotalMinor int64, now time.Time) bool {
	return p.ActiveAt(now) && p.Quantity > 0 && subtotalMinor >= p.ConditionMinor
}

// DiscountAmount вычисляет сумму скидки в минимальных единицах.
// Округление — half-up до минимальной денежной единицы.
func (p *Promotion) DiscountAmount(subtotalMinor int64) int64 {
	return (subtotalMinor*int64(p.DiscountBasisPoints) + basisPointsScale/2) / basisPointsScale
}
