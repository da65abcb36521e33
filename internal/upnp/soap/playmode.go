package soap

// PlayMode is a Sonos AVTransport combined repeat/shuffle mode string, as
// carried by CurrentPlayMode and SetPlayMode's NewPlayMode argument.
type PlayMode string

const (
	PlayModeNormal           PlayMode = "NORMAL"
	PlayModeRepeatAll        PlayMode = "REPEAT_ALL"
	PlayModeRepeatOne        PlayMode = "REPEAT_ONE"
	PlayModeShuffleNoRepeat  PlayMode = "SHUFFLE_NOREPEAT"
	PlayModeShuffle          PlayMode = "SHUFFLE"
	PlayModeShuffleRepeatOne PlayMode = "SHUFFLE_REPEAT_ONE"
)

// RepeatMode is the repeat component of a combined PlayMode.
type RepeatMode string

const (
	RepeatNone RepeatMode = "NONE"
	RepeatOne  RepeatMode = "ONE"
	RepeatAll  RepeatMode = "ALL"
)

// CombinePlayMode derives the single Sonos PlayMode string AVTransport
// expects from independent repeat and shuffle settings, mirroring the
// device's own encoding (repeat-all + shuffle is SHUFFLE, not a combination
// that also names "ALL" — Sonos has no repeat-all+shuffle mode distinct from
// plain SHUFFLE).
func CombinePlayMode(repeat RepeatMode, shuffle bool) PlayMode {
	switch repeat {
	case RepeatOne:
		if shuffle {
			return PlayModeShuffleRepeatOne
		}
		return PlayModeRepeatOne
	case RepeatAll:
		if shuffle {
			return PlayModeShuffle
		}
		return PlayModeRepeatAll
	default:
		if shuffle {
			return PlayModeShuffleNoRepeat
		}
		return PlayModeNormal
	}
}

// SplitPlayMode decomposes a Sonos PlayMode string into its repeat and
// shuffle components, the inverse of CombinePlayMode.
func SplitPlayMode(mode PlayMode) (RepeatMode, bool) {
	switch mode {
	case PlayModeRepeatAll:
		return RepeatAll, false
	case PlayModeRepeatOne:
		return RepeatOne, false
	case PlayModeShuffleNoRepeat:
		return RepeatNone, true
	case PlayModeShuffle:
		return RepeatAll, true
	case PlayModeShuffleRepeatOne:
		return RepeatOne, true
	default:
		return RepeatNone, false
	}
}
