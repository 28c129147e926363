package dfxml

// DFXML namespace URIs.
const (
	XMLNSDFXML = "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML"
	XMLNSDC    = "http://purl.org/dc/elements/1.1/"
	XMLNSDelta = "http://www.forensicswiki.org/wiki/Forensic_Disk_Differencing"
	XMLNSExt   = "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML#extensions"
)

// Attr is an attribute on a preserved foreign element. Space is the
// resolved namespace URI of a qualified attribute, empty for unqualified
// ones.
type Attr struct {
	Space string
	Name  string
	Value string
}

// ExternalElement is a preserved element from a namespace other than the
// DFXML namespace. It forms a strict tree: attributes, text and children
// are exclusively owned by their parent and replayed on encode. Character
// data is coalesced into Text, trimmed, and replayed before the children;
// the interleaving of text with child elements is not preserved.
type ExternalElement struct {
	Namespace string // Namespace URI; empty for unqualified elements.
	Name      string // Local tag name.
	Attrs     []Attr
	Text      string
	Children  []*ExternalElement
}

// NewExternalElement returns an element with the given namespace URI and
// local name.
func NewExternalElement(namespace, name string) *ExternalElement {
	return &ExternalElement{Namespace: namespace, Name: name}
}

// AddAttr appends an unqualified attribute, preserving insertion order.
func (e *ExternalElement) AddAttr(name, value string) {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// AddAttrNS appends a namespace-qualified attribute.
func (e *ExternalElement) AddAttrNS(space, name, value string) {
	e.Attrs = append(e.Attrs, Attr{Space: space, Name: name, Value: value})
}

// AddChild appends a child element.
func (e *ExternalElement) AddChild(child *ExternalElement) {
	e.Children = append(e.Children, child)
}

// Equal reports deep structural equality of two foreign subtrees.
func (e *ExternalElement) Equal(other *ExternalElement) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Namespace != other.Namespace || e.Name != other.Name || e.Text != other.Text {
		return false
	}
	if len(e.Attrs) != len(other.Attrs) || len(e.Children) != len(other.Children) {
		return false
	}
	for i := range e.Attrs {
		if e.Attrs[i] != other.Attrs[i] {
			return false
		}
	}
	for i := range e.Children {
		if !e.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Externals is an ordered collection of foreign-namespace elements attached
// to a container or File record. It never holds in-model content: appending
// an element in the DFXML namespace fails.
type Externals struct {
	elements []*ExternalElement
}

// Append adds a foreign element. It returns a KindForeignNamespace error
// when the element is in the DFXML namespace.
func (x *Externals) Append(el *ExternalElement) error {
	if el.Namespace == XMLNSDFXML {
		return &Error{
			Kind:    KindForeignNamespace,
			Element: el.Name,
			Offset:  -1,
			Message: "externals must not hold elements in the DFXML namespace",
		}
	}
	x.elements = append(x.elements, el)
	return nil
}

// Len returns the number of preserved elements.
func (x *Externals) Len() int { return len(x.elements) }

// All returns the preserved elements in insertion order. The returned slice
// must not be mutated.
func (x *Externals) All() []*ExternalElement { return x.elements }
