package engine

import "fmt"

func phaseKey(status Status, sub Subphase, myTurn bool, version int) string {
	return fmt.Sprintf("%s|%s|%t|%d", status, sub, myTurn, version)
}

func ContainsEffect[E Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(E); ok {
			return true
		}
	}
	return false
}

func CountEffect[E Effect](effects []Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(E); ok {
			n++
		}
	}
	return n
}
