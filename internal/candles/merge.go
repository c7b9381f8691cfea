package candles

import "trade_engine/internal/models"

// Diff — результат сверки окна: что обновить и чего не хватает.
type Diff struct {
	Modified []models.Candle
	Missing  []models.Candle
}

// Merge сверяет локальное окно с биржевым. Оба среза отсортированы по
// убыванию bar_time; идём lock-step двумя курсорами. Совпавший таймстемп
// сравнивается пополевно, расхождение — в Modified. Бар, которого нет
// локально, уходит в Missing, локальный курсор при этом не двигается.
// Локальные бары без пары у биржи просто пропускаются: удалять историю
// сверка не вправе.
func Merge(local, remote []models.Candle) Diff {
	var diff Diff

	i, j := 0, 0
	for j < len(remote) {
		if i >= len(local) || remote[j].BarTime > local[i].BarTime {
			diff.Missing = append(diff.Missing, remote[j])
			j++
			continue
		}
		if remote[j].BarTime == local[i].BarTime {
			if !remote[j].Equal(local[i]) {
				diff.Modified = append(diff.Modified, remote[j])
			}
			i++
			j++
			continue
		}
		// локальный бар старше курсора биржи
		i++
	}
	return diff
}
