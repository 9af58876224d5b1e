package session

// QuestionUsed marks a played or unavailable question in a theme.
const QuestionUsed = -1

// ThemeInfo is one column of the question table: a theme with its
// ordered question prices. A price of QuestionUsed means the cell is
// gone for the remainder of the round.
type ThemeInfo struct {
	Name      string
	Comment   string
	Questions []int
}

// Question bounds-checks a cell price lookup.
func (t *ThemeInfo) Question(index int) (int, bool) {
	if index < 0 || index >= len(t.Questions) {
		return 0, false
	}
	return t.Questions[index], true
}

// ThemeAt bounds-checks a theme lookup.
func (s *Session) ThemeAt(index int) (*ThemeInfo, bool) {
	if index < 0 || index >= len(s.Themes) {
		return nil, false
	}
	return s.Themes[index], true
}

// SetQuestionPrice updates one table cell, if it exists.
func (s *Session) SetQuestionPrice(themeIndex, questionIndex, price int) {
	theme, ok := s.ThemeAt(themeIndex)
	if !ok {
		return
	}
	if questionIndex < 0 || questionIndex >= len(theme.Questions) {
		return
	}
	theme.Questions[questionIndex] = price
}

// RemoveTheme deletes a whole theme column (final-round elimination).
func (s *Session) RemoveTheme(index int) {
	if index < 0 || index >= len(s.Themes) {
		return
	}
	s.Themes = append(s.Themes[:index], s.Themes[index+1:]...)
}
