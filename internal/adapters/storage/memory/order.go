package memory

import "time"

// newer ordena por timestamp desc; con empate, por id desc (igual que el ORDER BY de postgres).
func newer(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

// older es el orden inverso: timestamp asc, id asc.
func older(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return idi < idj
}
