package chunker

import (
	"strings"

	"docvoice/pkg/model"
)

// BoundSpan is a span's content paired with the voice that speaks it.
type BoundSpan struct {
	Text  string
	Voice string
}

// pool hands out voices from one gender bucket round-robin.
type pool struct {
	voices []string
	next   int
}

func (p *pool) draw() (string, bool) {
	if len(p.voices) == 0 {
		return "", false
	}
	v := p.voices[p.next%len(p.voices)]
	p.next++
	return v, true
}

// Binder assigns voices to tags for the duration of one pipeline call.
// Bindings never persist across calls: construct a fresh Binder per
// invocation and discard it afterwards.
type Binder struct {
	userVoice string
	bindings  map[string]string
	female    pool
	male      pool
	nextPool  model.Gender
}

// NewBinder builds a binder for one call. The pools partition allVoices
// by gender, excluding the user's own voice so tagged speakers always
// sound distinct from the narrator when alternatives exist.
func NewBinder(userVoice string, allVoices []model.Voice) *Binder {
	b := &Binder{
		userVoice: userVoice,
		bindings:  make(map[string]string),
		nextPool:  model.GenderFemale,
	}
	for _, v := range allVoices {
		if strings.EqualFold(v.Name, userVoice) {
			continue
		}
		if v.Gender == model.GenderMale {
			b.male.voices = append(b.male.voices, v.Name)
		} else {
			b.female.voices = append(b.female.voices, v.Name)
		}
	}
	return b
}

// VoiceFor resolves the voice for a tag, allocating a new binding the
// first time a tag is seen. New tags alternate between the female and
// male buckets, female first; an empty bucket falls back to the other,
// and when both are empty every tag falls back to the user's voice.
func (b *Binder) VoiceFor(tag Tag) string {
	key := tag.Canonical()
	if v, ok := b.bindings[key]; ok {
		return v
	}

	primary, secondary := &b.female, &b.male
	if b.nextPool == model.GenderMale {
		primary, secondary = &b.male, &b.female
	}

	voice, ok := primary.draw()
	if !ok {
		voice, ok = secondary.draw()
	}
	if !ok {
		voice = b.userVoice
	}

	b.bindings[key] = voice
	b.alternate()
	return voice
}

func (b *Binder) alternate() {
	if b.nextPool == model.GenderFemale {
		b.nextPool = model.GenderMale
	} else {
		b.nextPool = model.GenderFemale
	}
}

// Bind walks the spans in order and emits (content, voice) pairs.
// Untagged spans speak with the user's voice. Tagged spans bind a voice
// even when their content is empty, so alternation order depends only on
// tag order; empty content simply produces no output.
func (b *Binder) Bind(spans []TaggedSpan) []BoundSpan {
	var out []BoundSpan
	for _, span := range spans {
		voice := b.userVoice
		if span.Tag != nil {
			voice = b.VoiceFor(*span.Tag)
		}
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		out = append(out, BoundSpan{Text: text, Voice: voice})
	}
	return out
}
