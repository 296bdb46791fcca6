package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconCheck   = "\uf00c" // check
	IconX       = "\uf00d" // x
	IconWarning = "\uf071" // warning
	IconInfo    = "\uf05a" // info
	IconArrow   = "\uf061" // arrow right
	IconCode    = "\uf121" // code
	IconPackage = "\uf187" // archive/package
	IconFilter  = "\uf0b0" // filter
	IconCache   = "\uf49e" // cache
)
