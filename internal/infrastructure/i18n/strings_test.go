package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_English(t *testing.T) {
	c, err := Load("en")
	require.NoError(t, err)

	assert.Equal(t, "en", c.Language())
	assert.Equal(t, "ACE Engagement analytics", c.GetString("pluginname"))
	assert.Equal(t, "View your dashboard", c.GetString("viewyourdashboard"))
	assert.Equal(t, "Switch to live graph", c.GetString("switchtolivegraph"))
	assert.Equal(t, "Switch to static image", c.GetString("switchtostaticimage"))
	assert.Equal(t, "Add a new Engagement analytics block", c.GetString("ace:addinstance"))
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	c, err := Load("xx")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, c.Language())

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, c.Language())
}

func TestGetString_Missing(t *testing.T) {
	c := MustLoad("en")
	assert.Equal(t, "[[nosuchstring]]", c.GetString("nosuchstring"))
	assert.False(t, c.Has("nosuchstring"))
}

func TestModeStringsDefined(t *testing.T) {
	c := MustLoad("en")

	for _, graphType := range []string{"student", "course", "studentwithtabs", "teachercourse", "activity", "studentteachergraph"} {
		assert.True(t, c.Has(graphType), graphType)
		assert.True(t, c.Has(graphType+"titlehelper"), graphType)
		assert.True(t, c.Has("ace:"+graphType), graphType)
	}

	assert.Empty(t, c.GetString("studenttitlehelper"))
	assert.True(t, strings.HasPrefix(c.GetString("coursetitlehelper"), "Analytics for Course Engagement (ACE)"))
	assert.Contains(t, c.GetString("activitytitlehelper"), "\n\n")
}
