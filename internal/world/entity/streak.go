package entity

// KillStreak ведёт счётчик убийств подряд с таймаутом
type KillStreak struct {
	count   int
	timer   float64
	timeout float64
}

// NewKillStreak создаёт счётчик с таймаутом в секундах
func NewKillStreak(timeout float64) KillStreak {
	return KillStreak{timeout: timeout}
}

// Add засчитывает убийство и перезапускает таймаут
func (s *KillStreak) Add() {
	s.count++
	s.timer = s.timeout
}

// Update отсчитывает таймаут; по его истечении серия сбрасывается
func (s *KillStreak) Update(dt float64) {
	if s.count == 0 {
		return
	}
	s.timer -= dt
	if s.timer <= 0 {
		s.Reset()
	}
}

// Reset обнуляет серию
func (s *KillStreak) Reset() {
	s.count = 0
	s.timer = 0
}

func (s *KillStreak) Count() int { return s.count }

// Multiplier возвращает множитель золота для текущей серии
func (s *KillStreak) Multiplier() float64 {
	return StreakMultiplier(s.count)
}

// StreakMultiplier возвращает ступенчатый множитель по длине серии
func StreakMultiplier(count int) float64 {
	switch {
	case count >= 50:
		return 3.0
	case count >= 25:
		return 2.5
	case count >= 10:
		return 2.0
	case count >= 5:
		return 1.5
	default:
		return 1.0
	}
}
