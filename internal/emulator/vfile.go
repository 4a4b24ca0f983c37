package emulator

// virtualFile is one open handle onto a registered virtual file's
// contents, tracked per-case so concurrent cases on different threads
// never share a cursor (spec.md §3 "Virtualized file: a name ->
// byte-buffer mapping intercepted at guest open/read/close; the buffer
// is the fuzz input for this iteration").
type virtualFile struct {
	data   []byte
	cursor int
}

func (f *virtualFile) read(n int) []byte {
	if f.cursor >= len(f.data) {
		return nil
	}
	end := f.cursor + n
	if end > len(f.data) {
		end = len(f.data)
	}
	out := f.data[f.cursor:end]
	f.cursor = end
	return out
}

// RegisterVirtualFile installs name -> contents in the shared template
// table (spec.md §4.7 register_virtual_file). Per-case opens clone from
// this template so one case's reads never affect another's.
func (p *Program) RegisterVirtualFile(name string, contents []byte) {
	p.VFiles[name] = contents
}
