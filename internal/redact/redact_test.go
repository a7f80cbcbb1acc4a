package redact

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/usdot-its/ppm/internal/config"
)

var hex8 = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestRedactAllModeByDefault(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{"privacy.redaction.id": "ON"})
	assert.True(t, r.Active())
	assert.False(t, r.HasInclusions())
	assert.True(t, r.ShouldRedact("anything"))
}

func TestIncludeListModeOnlyRedactsMembers(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{
		"privacy.redaction.id":            "ON",
		"privacy.redaction.id.inclusions": "ON",
		"privacy.redaction.id.included":   "abc, def",
	})
	assert.True(t, r.HasInclusions())
	assert.True(t, r.ShouldRedact("abc"))
	assert.True(t, r.ShouldRedact("def"))
	assert.False(t, r.ShouldRedact("xyz"))
}

func TestAddInclusionTransitionsFromRedactAll(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{"privacy.redaction.id": "ON"})
	require.False(t, r.HasInclusions())
	r.AddInclusion("only-this-one")
	assert.True(t, r.HasInclusions())
	assert.True(t, r.ShouldRedact("only-this-one"))
	assert.False(t, r.ShouldRedact("something-else"))
}

func TestClearInclusionsStaysInIncludeListMode(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{
		"privacy.redaction.id":            "ON",
		"privacy.redaction.id.inclusions": "ON",
		"privacy.redaction.id.included":   "abc",
	})
	r.ClearInclusions()
	assert.True(t, r.HasInclusions(), "clearing must not revert to redact-all")
	assert.Equal(t, 0, r.NumInclusions())
	assert.False(t, r.ShouldRedact("abc"), "empty inclusion set redacts nothing")
}

func TestRandomIDIsEightHexChars(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{"privacy.redaction.id": "ON"})
	for i := 0; i < 100; i++ {
		id := r.RandomID()
		assert.Regexp(t, hex8, id)
	}
}

func TestInactiveRedactorNeverRedacts(t *testing.T) {
	r := NewIDRedactor(config.ConfigMap{})
	assert.False(t, r.Active())
	assert.Equal(t, "keep-me", r.Redact("keep-me"))
}

func TestPartIIStripRemovesNestedOccurrences(t *testing.T) {
	fields := NewPartIIFields("pathHistory")
	doc := `{"payload":{"data":{"partII":[{"pathHistory":{"a":1},"other":1},{"x":{"pathHistory":0}}]}}}`

	out, err := fields.Strip(doc, "payload.data.partII")
	require.NoError(t, err)

	assert.False(t, gjson.Get(out, "payload.data.partII.0.pathHistory").Exists())
	assert.False(t, gjson.Get(out, "payload.data.partII.1.x.pathHistory").Exists())
	assert.True(t, gjson.Get(out, "payload.data.partII.0.other").Exists(), "unmatched sibling fields must survive")
	assert.True(t, gjson.Valid(out))
}

func TestPartIIStripNoopWhenFieldListEmpty(t *testing.T) {
	fields := NewPartIIFields()
	doc := `{"payload":{"data":{"partII":{"pathHistory":1}}}}`
	out, err := fields.Strip(doc, "payload.data.partII")
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestPartIIStripMissingRootIsNoop(t *testing.T) {
	fields := NewPartIIFields("pathHistory")
	doc := `{"payload":{"data":{}}}`
	out, err := fields.Strip(doc, "payload.data.partII")
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestZeroSizeZeroesBothFieldsWhenPresent(t *testing.T) {
	doc := `{"payload":{"data":{"coreData":{"size":{"length":500,"width":200}}}}}`
	out, err := ZeroSize(doc, "payload.data.coreData.size")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gjson.Get(out, "payload.data.coreData.size.length").Int())
	assert.Equal(t, int64(0), gjson.Get(out, "payload.data.coreData.size.width").Int())
}

func TestZeroSizeNoopWhenAbsent(t *testing.T) {
	doc := `{"payload":{"data":{"coreData":{}}}}`
	out, err := ZeroSize(doc, "payload.data.coreData.size")
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}
