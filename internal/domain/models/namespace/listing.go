package namespace

// Listing holds the direct children of one folder (or of root).
type Listing struct {
	Folder  *Folder  `json:"folder"` // nil for root
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}
