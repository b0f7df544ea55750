package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	require.Equal(t, "sbb에 대해서 알고 싶습니다.", Sanitize("sbb에 대해서 알고 싶습니다."))
	require.Equal(t, "<b>bold</b>", Sanitize("<b>bold</b>"))
	require.Equal(t, "hi", Sanitize(`hi<script>alert(1)</script>`))
}

func TestSanitizeSubject(t *testing.T) {
	require.Equal(t, "sbb가 무엇인가요?", SanitizeSubject("  sbb가 무엇인가요? "))
	require.Equal(t, "bold", SanitizeSubject("<b>bold</b>"))
	require.Empty(t, SanitizeSubject("<script>x</script>"))
}
