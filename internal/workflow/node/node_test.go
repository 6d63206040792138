package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTitleList(t *testing.T) {
	text := "Here are some books you might enjoy:\n\n" +
		"1. **Dune** by Frank Herbert\n" +
		"2) \"The Hobbit\"\n" +
		"3. dune by frank herbert\n" +
		"- *Rebecca*\n" +
		"\n" +
		"Enjoy!"

	got := ParseTitleList(text, 10)
	assert.Equal(t, []string{"Dune by Frank Herbert", "The Hobbit", "Rebecca"}, got)
}

func TestParseTitleList_PlainLinesAndCap(t *testing.T) {
	got := ParseTitleList("Dune\n\n“Emma”\nIvanhoe\n", 2)
	assert.Equal(t, []string{"Dune", "Emma"}, got)

	assert.Empty(t, ParseTitleList("  \n\n", 5))
}

func TestRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateByRunes("héllo", 4))
	assert.Equal(t, "llo", TailByRunes("héllo", 3))
	assert.Equal(t, "héllo", TailByRunes("héllo", 10))
	assert.Equal(t, "", TailByRunes("héllo", 0))
}

func TestStripEcho(t *testing.T) {
	assert.Equal(t, "Then the storm came.", StripEcho("It was quiet.", "It was quiet. Then the storm came.  "))
	assert.Equal(t, "New text.", StripEcho("Old text.", "\nNew text.\n"))
}

func TestBulletBlock(t *testing.T) {
	assert.Equal(t, "- Fantasy\n- Mystery", BulletBlock([]string{"Fantasy", " ", "Mystery"}))
}
