// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package llm

// repairJSON fixes the formatting slips small models make most often:
// keys missing their opening quote (`{headword":`) and trailing commas
// before a closing bracket. Text inside string values is left alone.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	inString := false
	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(in) {
					i++
					out = append(out, in[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)
		case ',':
			if j := skipSpace(in, i+1); j < len(in) && (in[j] == '}' || in[j] == ']') {
				continue
			}
			out = append(out, ch)
			i = quoteKey(in, i+1, &out) - 1
		case '{':
			out = append(out, ch)
			i = quoteKey(in, i+1, &out) - 1
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

// quoteKey copies the whitespace at in[start:] to out and, when it is
// followed by a bare key closed by `":`, adds the missing opening quote.
// It returns the index of the next rune to process.
func quoteKey(in []rune, start int, out *[]rune) int {
	i := skipSpace(in, start)
	*out = append(*out, in[start:i]...)

	j := i
	for j < len(in) && (isLetter(in[j]) || in[j] == '_') {
		j++
	}
	if j == i || j+1 >= len(in) || in[j] != '"' || in[j+1] != ':' {
		return i
	}
	*out = append(*out, '"')
	*out = append(*out, in[i:j+1]...)
	return j + 1
}

func skipSpace(in []rune, i int) int {
	for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t' || in[i] == '\r') {
		i++
	}
	return i
}
