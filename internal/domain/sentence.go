package domain

// SentencePair is a bilingual example sentence tagged with a difficulty
// tier. Pairs are immutable after corpus load. The (SourceID, TargetID)
// pair is an external corpus identifier and is not unique in the store.
type SentencePair struct {
	SourceID   int
	TargetID   int
	SourceText string
	TargetText string
	Tier       Level
}
