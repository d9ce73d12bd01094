package jvn

// Hutton32 reworks the Nobili32 transition so that construction is
// rotationally invariant and the construction-arm protocol runs over a
// single wire. An OTS wire end writes cells with a write-and-retract
// sequence; a sensitized cell derives its final direction from the excited
// arrow pointing at it. The signal trains are:
//
//	100000  move forward            100001  write forward OTS and retract
//	100010  turn left               100011  write left OTS and retract
//	10100   turn right              10011   write reverse OTS and retract
//	                                10101   write right OTS and retract
//	101101  write forward STS and retract
//	110001  write left STS and retract
//	110101  write reverse STS and retract
//	111001  write right STS and retract
//	1111    write confluent and retract
//	101111  retract
//
// States: 0 ground, 1-8 sensitized, 9-16 OTS (13-16 excited),
// 17-24 STS (21-24 excited), 25-28 confluent, 29-31 crossings.

func isOTS(c byte) bool { return c >= 9 && c <= 16 }
func isSTS(c byte) bool { return c >= 17 && c <= 24 }
func isTS(c byte) bool  { return isOTS(c) || isSTS(c) }

func isSensitized(c byte) bool { return c >= 1 && c <= 8 }

func isEast(c byte) bool  { return c == 9 || c == 13 || c == 17 || c == 21 }
func isNorth(c byte) bool { return c == 10 || c == 14 || c == 18 || c == 22 }
func isWest(c byte) bool  { return c == 11 || c == 15 || c == 19 || c == 23 }
func isSouth(c byte) bool { return c == 12 || c == 16 || c == 20 || c == 24 }

func isExcited(c byte) bool { return (c >= 13 && c <= 16) || (c >= 21 && c <= 24) }

// arrowDir encodes the direction of a transmission state:
// 0 east, 1 north, 2 west, 3 south.
func arrowDir(c byte) byte { return (c - 9) % 4 }

// outputOf returns the state of the cell the arrow c points to.
func outputOf(c, n, s, e, w byte) byte {
	switch {
	case isEast(c):
		return e
	case isNorth(c):
		return n
	case isWest(c):
		return w
	case isSouth(c):
		return s
	}
	return 0
}

// inputOf returns the state of the excited cell pointing at us.
func inputOf(n, s, e, w byte) byte {
	switch {
	case isEast(w) && isExcited(w):
		return w
	case isNorth(s) && isExcited(s):
		return s
	case isWest(e) && isExcited(e):
		return e
	case isSouth(n) && isExcited(n):
		return n
	}
	return 0
}

func outputWillBecomeOTS(c, n, s, e, w byte) bool {
	out := outputOf(c, n, s, e, w)
	return out == 8 ||
		(out == 4 && isExcited(c)) ||
		(out == 5 && !isExcited(c))
}

func outputWillBecomeConfluent(c, n, s, e, w byte) bool {
	return outputOf(c, n, s, e, w) == 7 && isExcited(c)
}

func outputWillBecomeSensitized(c, n, s, e, w byte) bool {
	out := outputOf(c, n, s, e, w)
	return (out == 0 && isExcited(c)) || out == 1 || out == 2 || out == 3 ||
		(out == 4 && !isOTS(c))
}

// excitedOTSToUs reports an excited OTS state (or an emitting confluent)
// that will hit this cell next.
func excitedOTSToUs(c, n, s, e, w byte) bool {
	return ((n == 16 || n == 27 || n == 28 || n == 30 || n == 31) && !(c == 14 || c == 10)) ||
		((s == 14 || s == 27 || s == 28 || s == 30 || s == 31) && !(c == 16 || c == 12)) ||
		((e == 15 || e == 27 || e == 28 || e == 29 || e == 31) && !(c == 13 || c == 9)) ||
		((w == 13 || w == 27 || w == 28 || w == 29 || w == 31) && !(c == 15 || c == 11))
}

// excitedOTSArrowToUs reports an excited OTS arrow pointing at this cell.
func excitedOTSArrowToUs(c, n, s, e, w byte) bool {
	return (n == 16 && !(c == 14 || c == 10)) ||
		(s == 14 && !(c == 16 || c == 12)) ||
		(e == 15 && !(c == 13 || c == 9)) ||
		(w == 13 && !(c == 15 || c == 11))
}

// otsArrowToUs reports any OTS arrow pointing at this cell.
func otsArrowToUs(n, s, e, w byte) bool {
	return (isOTS(n) && isSouth(n)) || (isOTS(s) && isNorth(s)) ||
		(isOTS(e) && isWest(e)) || (isOTS(w) && isEast(w))
}

// excitedSTSToUs reports an excited STS state that will hit this cell next.
func excitedSTSToUs(c, n, s, e, w byte) bool {
	return ((n == 24 || n == 27 || n == 28 || n == 30 || n == 31) && !(c == 22 || c == 18)) ||
		((s == 22 || s == 27 || s == 28 || s == 30 || s == 31) && !(c == 24 || c == 20)) ||
		((e == 23 || e == 27 || e == 28 || e == 29 || e == 31) && !(c == 21 || c == 17)) ||
		((w == 21 || w == 27 || w == 28 || w == 29 || w == 31) && !(c == 23 || c == 19))
}

// excitedSTSArrowToUs reports an excited STS arrow pointing at this cell.
func excitedSTSArrowToUs(c, n, s, e, w byte) bool {
	return (n == 24 && !(c == 22 || c == 18)) ||
		(s == 22 && !(c == 24 || c == 20)) ||
		(e == 23 && !(c == 21 || c == 17)) ||
		(w == 21 && !(c == 23 || c == 19))
}

// allInputsOn reports that every input arrow is excited and at least one
// input exists.
func allInputsOn(n, s, e, w byte) bool {
	return !(n == 12 || s == 10 || e == 11 || w == 9) &&
		(n == 16 || s == 14 || e == 15 || w == 13)
}

// isCrossing reports exactly two input arrows and two outputs, the
// configuration in which a confluent cell acts as a wire crossing.
func isCrossing(n, s, e, w byte) bool {
	inputs := 0
	if isSouth(n) {
		inputs++
	}
	if isEast(w) {
		inputs++
	}
	if isWest(e) {
		inputs++
	}
	if isNorth(s) {
		inputs++
	}
	outputs := 0
	if isTS(n) && !isSouth(n) {
		outputs++
	}
	if isTS(w) && !isEast(w) {
		outputs++
	}
	if isTS(e) && !isWest(e) {
		outputs++
	}
	if isTS(s) && !isNorth(s) {
		outputs++
	}
	return inputs == 2 && outputs == 2
}

// quiesce drops the excitation from a state.
func quiesce(c byte) byte {
	switch {
	case (c >= 13 && c <= 16) || (c >= 21 && c <= 24):
		return c - 4
	case c >= 26 && c <= 31:
		return 25
	}
	return c
}

// nextHutton32 is the Hutton32 transition for (c, n, s, e, w).
func nextHutton32(c, n, s, e, w byte) byte {
	switch {
	case isOTS(c):
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0 // destroyed by the incoming excited STS
		}
		if excitedOTSToUs(c, n, s, e, w) {
			out := outputOf(c, n, s, e, w)
			if outputWillBecomeOTS(c, n, s, e, w) || (isSTS(out) && !isExcited(out)) {
				return 0 // retraction
			}
			if outputWillBecomeConfluent(c, n, s, e, w) {
				return 1 // sensitized by the next input, after retraction
			}
			return quiesce(c) + 4 // usual OTS transmission
		}
		if outputWillBecomeConfluent(c, n, s, e, w) {
			return 0 // retraction
		}
		if isExcited(c) && outputWillBecomeSensitized(c, n, s, e, w) {
			// end-of-wire marker: an excited STS standing for a quiescent
			// OTS, so the sensitized cell knows which input is its wire
			return quiesce(c) + 12
		}
		return quiesce(c)

	case isSTS(c):
		if isExcited(c) && isSensitized(outputOf(c, n, s, e, w)) && otsArrowToUs(n, s, e, w) {
			// the end-of-wire marker behaves specially
			if outputWillBecomeSensitized(c, n, s, e, w) {
				if excitedOTSArrowToUs(c, n, s, e, w) {
					return c - 8
				}
				return c
			}
			if excitedOTSArrowToUs(c, n, s, e, w) {
				return 0 // write-and-retract
			}
			return quiesce(c) - 8 // revert to quiescent OTS
		}
		if isExcited(c) && outputOf(c, n, s, e, w) == 0 {
			if excitedSTSArrowToUs(c, n, s, e, w) {
				return c
			}
			return quiesce(c)
		}
		if excitedOTSArrowToUs(c, n, s, e, w) {
			return 0 // destroyed by the incoming excited OTS
		}
		if excitedSTSToUs(c, n, s, e, w) {
			return quiesce(c) + 4 // usual STS transmission
		}
		return quiesce(c)

	case c == 0:
		if excitedOTSArrowToUs(c, n, s, e, w) {
			return 1 // become sensitized
		}
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return quiesce(inputOf(n, s, e, w)) - 8 // directly a forward OTS
		}
		return c

	case c == 1:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return 2 // 10
		}
		return 3 // 11
	case c == 2:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return 4 // 100
		}
		return 5 // 101
	case c == 3:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return 6 // 110
		}
		return 7 // 111
	case c == 4:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return 8 // 1000
		}
		return (quiesce(inputOf(n, s, e, w))-9+2)%4 + 9 // 1001: reverse
	case c == 5:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return (quiesce(inputOf(n, s, e, w))-9+3)%4 + 9 // 1010: turn right
		}
		return quiesce(inputOf(n, s, e, w)) + 8 // 1011: STS forward
	case c == 6:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return (quiesce(inputOf(n, s, e, w))-9+1)%4 + 17 // 1100: STS left
		}
		return (quiesce(inputOf(n, s, e, w))-9+2)%4 + 17 // 1101: STS reverse
	case c == 7:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return (quiesce(inputOf(n, s, e, w))-9+3)%4 + 17 // 1110: STS right
		}
		return 25 // 1111: confluent
	case c == 8:
		if !excitedOTSArrowToUs(c, n, s, e, w) {
			return 9 + arrowDir(inputOf(n, s, e, w)) // 10000: move forward
		}
		return 9 + arrowDir(inputOf(n, s, e, w)+1) // 10001: turn left

	case c == 25: // quiescent confluent
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0
		}
		if isCrossing(n, s, e, w) {
			return crossingState(n, s, e, w)
		}
		if allInputsOn(n, s, e, w) {
			return 26
		}
		return 25
	case c == 26:
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0
		}
		if allInputsOn(n, s, e, w) {
			return 28
		}
		return 27
	case c == 27:
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0
		}
		if allInputsOn(n, s, e, w) {
			return 26
		}
		return 25
	case c == 28:
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0
		}
		if allInputsOn(n, s, e, w) {
			return 28
		}
		return 27
	case c == 29 || c == 30 || c == 31:
		if excitedSTSArrowToUs(c, n, s, e, w) {
			return 0
		}
		return crossingState(n, s, e, w)
	}
	return c
}

// crossingState resolves the crossing sub-state from the excited inputs.
func crossingState(n, s, e, w byte) byte {
	ns := n == 16 || s == 14
	ew := e == 15 || w == 13
	switch {
	case ns && ew:
		return 31 // double crossing
	case ns:
		return 30 // vertical crossing
	case ew:
		return 29 // horizontal crossing
	}
	return 25
}
