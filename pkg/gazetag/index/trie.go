package index

// Trie is an Aho-Corasick automaton over the bytes of the registered
// phrases. Each node carries a failure link to the longest proper suffix
// that is also a trie path, and an output link to the nearest such suffix
// that ends a phrase, so a scan visits every hit without rescanning.
type Trie struct {
	registry
	nodes []trieNode
}

type trieNode struct {
	next map[byte]int32
	fail int32
	out  int32 // phrase id ending here, or -1
	dict int32 // nearest suffix node with out >= 0, or -1
}

// NewTrie returns an empty, open trie index.
func NewTrie() *Trie {
	return &Trie{registry: newRegistry()}
}

// Finalize builds the goto, failure and output links.
func (t *Trie) Finalize() error {
	if err := t.seal(); err != nil {
		return err
	}

	t.nodes = []trieNode{newTrieNode()}
	for id, p := range t.patterns {
		cur := int32(0)
		for i := 0; i < len(p); i++ {
			nxt, ok := t.nodes[cur].next[p[i]]
			if !ok {
				nxt = int32(len(t.nodes))
				t.nodes = append(t.nodes, newTrieNode())
				t.nodes[cur].next[p[i]] = nxt
			}
			cur = nxt
		}
		t.nodes[cur].out = int32(id)
	}

	// Breadth-first, so every failure target is complete before use.
	queue := make([]int32, 0, len(t.nodes))
	for _, child := range t.nodes[0].next {
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for b, v := range t.nodes[u].next {
			queue = append(queue, v)

			f := t.nodes[u].fail
			for {
				if w, ok := t.nodes[f].next[b]; ok && w != v {
					t.nodes[v].fail = w
					break
				}
				if f == 0 {
					t.nodes[v].fail = 0
					break
				}
				f = t.nodes[f].fail
			}

			fv := t.nodes[v].fail
			if t.nodes[fv].out >= 0 {
				t.nodes[v].dict = fv
			} else {
				t.nodes[v].dict = t.nodes[fv].dict
			}
		}
	}
	return nil
}

// Scan walks text once and reports every phrase occurrence ordered by end
// offset, longest first within the same end.
func (t *Trie) Scan(text string) ([]Occurrence, error) {
	if err := t.checkScan(); err != nil {
		return nil, err
	}

	var occ []Occurrence
	state := int32(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		for {
			if nxt, ok := t.nodes[state].next[b]; ok {
				state = nxt
				break
			}
			if state == 0 {
				break
			}
			state = t.nodes[state].fail
		}

		if id := t.nodes[state].out; id >= 0 {
			occ = append(occ, Occurrence{End: i + 1, Pattern: t.patterns[id]})
		}
		for d := t.nodes[state].dict; d >= 0; d = t.nodes[d].dict {
			occ = append(occ, Occurrence{End: i + 1, Pattern: t.patterns[t.nodes[d].out]})
		}
	}
	return occ, nil
}

func newTrieNode() trieNode {
	return trieNode{next: make(map[byte]int32), out: -1, dict: -1}
}
