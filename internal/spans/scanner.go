package spans

// scanLine walks every character of one line, updating lexical mode and
// brace depth. Braces only count in plain code.
func (s *scanState) scanLine(line string, lineNo int) {
	// A line comment ends with its line
	if s.mode == modeLineComment {
		s.mode = modePlain
	}

	for i := 0; i < len(line); i++ {
		if s.skipNext {
			s.skipNext = false
			continue
		}
		if s.mode == modeLineComment {
			return
		}

		ch := line[i]
		var next, prev byte
		if i+1 < len(line) {
			next = line[i+1]
		}
		if i > 0 {
			prev = line[i-1]
		}

		// Comment delimiters
		if !s.mode.inString() {
			switch {
			case s.mode == modePlain && ch == '/' && next == '/':
				s.mode = modeLineComment
				continue
			case s.mode == modePlain && ch == '/' && next == '*':
				s.mode = modeBlockComment
				s.skipNext = true
				continue
			case s.mode == modeBlockComment && ch == '*' && next == '/':
				s.mode = modePlain
				s.skipNext = true
				continue
			}
		}
		if s.mode == modeBlockComment {
			continue
		}

		// Quoted strings; the closer must be the opening quote
		if s.mode != modeTemplate && (ch == '\'' || ch == '"') && prev != '\\' {
			quote := modeSingleQuote
			if ch == '"' {
				quote = modeDoubleQuote
			}
			switch s.mode {
			case modePlain:
				s.mode = quote
			case quote:
				s.mode = modePlain
			}
			continue
		}

		// Template literals, interpolation included, are opaque
		if ch == '`' && prev != '\\' {
			switch s.mode {
			case modePlain:
				s.mode = modeTemplate
			case modeTemplate:
				s.mode = modePlain
			}
			continue
		}

		if s.mode != modePlain {
			continue
		}

		switch ch {
		case '{':
			s.openBrace()
		case '}':
			s.closeBrace(lineNo)
		}
	}
}
