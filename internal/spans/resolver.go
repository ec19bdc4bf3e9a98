package spans

// push records a new unpinned context opened on lineNo
func (s *scanState) push(m Match, lineNo int) {
	s.stack = append(s.stack, openContext{name: m.Name, startLine: lineNo})
}

// openBrace increments depth and pins every context still waiting for a
// body to the new depth. When several contexts are waiting they all share
// one depth, and closeBrace then pairs the last pushed one first.
func (s *scanState) openBrace() {
	s.depth++
	for i := range s.stack {
		if !s.stack[i].pinned {
			s.stack[i].depth = s.depth
			s.stack[i].pinned = true
		}
	}
}

// closeBrace closes the most recently pushed context pinned at the current
// depth, if any, and then decrements depth.
func (s *scanState) closeBrace(lineNo int) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		ctx := s.stack[i]
		if !ctx.pinned || ctx.depth != s.depth {
			continue
		}
		s.stack = append(s.stack[:i], s.stack[i+1:]...)
		s.closed = append(s.closed, newSpan(ctx.name, ctx.startLine, lineNo))
		break
	}
	s.depth--
}
