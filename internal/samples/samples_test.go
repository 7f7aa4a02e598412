package samples

import (
	"testing"
	"testing/fstest"

	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/lexicon"
	"github.com/scamwatch/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T) *Set {
	t.Helper()
	set, err := Load()
	require.NoError(t, err)
	return set
}

func TestLoad_Embedded(t *testing.T) {
	set := mustLoad(t)

	assert.Len(t, set.Text, 5)
	assert.Len(t, set.Voice, 4)
	assert.Len(t, set.Video, 4)
	assert.Equal(t, "txt-001", set.Text[0].ID)
	require.NotNil(t, set.Video[0].DeepfakeIndicators)
	assert.Nil(t, set.Video[3].DeepfakeIndicators)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindText, ParseKind("text"))
	assert.Equal(t, KindVoice, ParseKind("voice"))
	assert.Equal(t, KindVideo, ParseKind("video"))
	assert.Equal(t, KindAll, ParseKind("all"))
	assert.Equal(t, KindAll, ParseKind(""))
	assert.Equal(t, KindAll, ParseKind("fax"))
}

func TestGet(t *testing.T) {
	set := mustLoad(t)

	assert.Equal(t, set.Voice, set.Get(KindVoice))
	assert.Same(t, set, set.Get(KindAll))
}

func TestNormalize(t *testing.T) {
	set := mustLoad(t)

	all := set.Normalize(KindAll)
	require.Len(t, all, 13)
	assert.Equal(t, models.ChannelText, all[0].Channel)
	assert.Equal(t, "alerts@paytm-secure.co.in", all[0].Metadata.Sender)

	voice := set.Normalize(KindVoice)
	require.Len(t, voice, 4)
	assert.Equal(t, set.Voice[0].Transcript, voice[0].Content)
	assert.Equal(t, "140-555-0199", voice[0].Metadata.CallerID)

	video := set.Normalize(KindVideo)
	require.Len(t, video, 4)
	assert.Equal(t, "skype", video[0].Metadata.Platform)
}

func TestBatchItems_AnalyzeCorpus(t *testing.T) {
	set := mustLoad(t)
	engine := fraud.NewEngine(lexicon.Default(), fraud.DefaultOptions())

	out := engine.AnalyzeBatch(BatchItems(set.Normalize(KindAll)))

	byID := make(map[models.ItemID]models.BatchEntry, len(out))
	for _, e := range out {
		require.Empty(t, e.Error, "item %s", e.ID)
		byID[e.ID] = e
	}

	assert.Equal(t, models.LabelUnclear, byID["txt-004"].Label)
	assert.Equal(t, models.LabelUnclear, byID["voc-003"].Label)
	assert.Equal(t, models.LabelUnclear, byID["vid-003"].Label)

	assert.Contains(t, byID["txt-001"].Reasons, "Suspicious sender domain")
	// display-name form does not match the local@domain pattern
	assert.NotContains(t, byID["txt-002"].Reasons, "Suspicious sender domain")
	assert.Contains(t, byID["voc-001"].Reasons, "Possible caller ID spoofing")
	assert.Contains(t, byID["voc-002"].Reasons, "Possible caller ID spoofing")
	assert.Contains(t, byID["vid-001"].Reasons, "Possible deepfake indicators (blink/lip-sync anomaly)")
	assert.Contains(t, byID["vid-002"].Reasons, "Possible deepfake indicators (blink/lip-sync anomaly)")
	assert.Equal(t, models.SeverityHigh, byID["voc-001"].Severity)
}

func TestLoadFS_Errors(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{})
	assert.ErrorContains(t, err, "read text_samples.json")

	_, err = LoadFS(fstest.MapFS{
		"text_samples.json":  {Data: []byte("[]")},
		"voice_samples.json": {Data: []byte("{")},
		"video_samples.json": {Data: []byte("[]")},
	})
	assert.ErrorContains(t, err, "parse voice_samples.json")
}
