// Package lang implements a tree-walking interpreter for rts, a small
// indentation-delimited scripting language.
//
// # Pipeline
//
// Source text passes through four front-end stages before it is executed:
//
//  1. [Lex] scans bytes into one [Line] per statement, recording the
//     indentation of each line and nesting bracketed tokens.
//  2. [NestBrackets] groups the tokens between a bracket pair into the
//     opening token, depth-first, once for () and once for [].
//  3. [NestLines] turns the flat line sequence into a tree: a line owns the
//     run of strictly more indented lines that follows it.
//  4. [StripComments] removes comment tokens and collapses blank lines.
//
// [Parse] runs all four. The resulting line tree becomes the body of a
// namespace in the structure [Tree] and the [Interpreter] walks it.
//
// # Example
//
//	# values
//	greeting = "hello"
//	limit ~~ : UInt = 3
//
//	# a namespace runs as soon as it is declared
//	point
//	  x = 1
//	  y = 2
//
//	# a callable runs when it is invoked
//	square(n : Int) -> Int
//	  = n * n
//
//	i = 0
//	? (i < limit)
//	  println(f"{greeting} {i} {square(i)}")
//	  i++
//	  go()
//	?
//	  println("never")
//
// # Values
//
// Every value is a literal [Token]. Operations that are undefined for their
// operands, and references to names that do not resolve, produce a
// [KindNone] token instead of an error. Those degradations are logged at
// trace level through the interpreter's logger.
//
// # Scoping
//
// Names resolve against the children of the current structure, then its
// parent, up to the root. Declarations carrying a mutability marker (~ or
// ~~) or a type annotation always bind in the current scope; a plain
// assignment mutates the nearest binding and only creates a local when the
// name does not resolve.
package lang
