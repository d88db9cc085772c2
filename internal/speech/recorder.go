package speech

import "sync"

// Utterance is one recorded call to Speak.
type Utterance struct {
	Text  string
	Voice Voice
}

// Recorder keeps every utterance in memory.
type Recorder struct {
	mu         sync.Mutex
	utterances []Utterance

	// OnSpeak, when set, is called after each utterance is recorded.
	OnSpeak func(Utterance)
}

// Speak implements Speaker.
func (r *Recorder) Speak(text string, voice Voice) {
	u := Utterance{Text: text, Voice: voice}
	r.mu.Lock()
	r.utterances = append(r.utterances, u)
	fn := r.OnSpeak
	r.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

// Utterances returns a copy of everything spoken so far.
func (r *Recorder) Utterances() []Utterance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Utterance(nil), r.utterances...)
}

// Texts returns the text of every utterance, or nil when nothing was
// spoken.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.utterances) == 0 {
		return nil
	}
	texts := make([]string, len(r.utterances))
	for i, u := range r.utterances {
		texts[i] = u.Text
	}
	return texts
}

// Last returns the most recent utterance.
func (r *Recorder) Last() (Utterance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.utterances) == 0 {
		return Utterance{}, false
	}
	return r.utterances[len(r.utterances)-1], true
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.utterances = nil
}
