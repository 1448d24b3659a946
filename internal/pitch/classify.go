package pitch

// VoiceType is one of the six supported vocal categories.
type VoiceType string

const (
	VoiceBass         VoiceType = "bass"
	VoiceBaritone     VoiceType = "baritone"
	VoiceTenor        VoiceType = "tenor"
	VoiceAlto         VoiceType = "alto"
	VoiceMezzoSoprano VoiceType = "mezzo-soprano"
	VoiceSoprano      VoiceType = "soprano"
)

// Classify maps a vocal range to a voice type by the midpoint of its
// min/max frequency. The ladder keys male and female registers on frequency
// alone, which is a deliberate simplification carried over from the original
// threshold table.
func Classify(minHz, maxHz float64) VoiceType {
	medianHz := (minHz + maxHz) / 2
	switch {
	case medianHz < 130:
		return VoiceBass
	case medianHz < 165:
		return VoiceBaritone
	case medianHz < 260:
		return VoiceTenor
	case medianHz < 350:
		return VoiceAlto
	case medianHz < 440:
		return VoiceMezzoSoprano
	default:
		return VoiceSoprano
	}
}
