package lang

// Parse runs the front end over src and returns the cleaned line tree.
func Parse(src []byte) []*Line {
	return StripComments(NestLines(Lex(src)))
}
