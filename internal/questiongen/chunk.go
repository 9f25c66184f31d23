package questiongen

import "strings"

// splitChunks packs blank-line separated paragraphs into chunks of at most
// maxChars. A single paragraph longer than maxChars is split on whitespace.
func splitChunks(text string, maxChars int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, piece := range splitLong(para, maxChars) {
			if cur.Len() > 0 && cur.Len()+len(piece)+2 > maxChars {
				flush()
			}
			if cur.Len() > 0 {
				cur.WriteString("\n\n")
			}
			cur.WriteString(piece)
		}
	}
	flush()
	return chunks
}

func splitLong(para string, maxChars int) []string {
	if maxChars <= 0 || len(para) <= maxChars {
		return []string{para}
	}
	var (
		out []string
		cur strings.Builder
	)
	for _, word := range strings.Fields(para) {
		if cur.Len() > 0 && cur.Len()+len(word)+1 > maxChars {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// distribute spreads total across n chunks, earlier chunks taking the
// remainder. Each share is capped at perChunk.
func distribute(total, n, perChunk int) []int {
	shares := make([]int, n)
	if n == 0 {
		return shares
	}
	base, rem := total/n, total%n
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
		if perChunk > 0 && shares[i] > perChunk {
			shares[i] = perChunk
		}
	}
	return shares
}
