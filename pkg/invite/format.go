/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package invite

const (
	// === SEALED TRACK (.unvl) ===
	TrackMagic     = "UNVLTRK1"
	TrackExtension = ".unvl"

	// === AUDIO ENGINE ===
	SampleRate  = 48000
	Channels    = 2
	FrameMillis = 20
	FrameSize   = SampleRate / 1000 * FrameMillis // samples per channel per frame
	MaxFrameLen = 5760                            // 120 ms @ 48 kHz, largest opus frame

	// === KEY DERIVATION ===
	KeyIterations = 4096
	KeyLen        = 32
	SaltLen       = 16

	// === TLV TAGS ===
	TagTitle = "TITL"
	TagSalt  = "SALT"
	TagAudio = "AUDI"
)
