package manifest

// Standard attribute keys in their fixed order.
const (
	ImplementationTitle   = "Implementation-Title"
	ImplementationVersion = "Implementation-Version"
	ImplementationURL     = "Implementation-URL"
	ImplementationVendor  = "Implementation-Vendor"
	ProjectName           = "ProjectName"
	Version               = "Version"
	Maintainer            = "Maintainer"
	Project               = "Project"
	ProjectVersion        = "Project-Version"
	CreatedWith           = "Created-With"
	BuiltBy               = "Built-By"
	BuildDate             = "Build-Date"
	BuildJDK              = "Build-JDK"
	BuildOSName           = "Build-OS-Name"
	BuildOSArch           = "Build-OS-Arch"
	BuildOSVersion        = "Build-OS-Version"
	AutomaticModuleName   = "Automatic-Module-Name"
)

// Facts feed Standard.
type Facts struct {
	Title          string
	Version        string
	URL            string
	Vendor         string
	Maintainer     string
	Project        string
	ProjectVersion string
	CreatedWith    string
	BuiltBy        string
	BuildDate      string
	JDK            string
	OSName         string
	OSArch         string
	OSVersion      string
	ModuleName     string
}

// Standard builds the fixed attribute set. Automatic-Module-Name is omitted
// when ModuleName is empty.
func Standard(f Facts) (*Attributes, error) {
	entries := []Attribute{
		{ImplementationTitle, f.Title},
		{ImplementationVersion, f.Version},
		{ImplementationURL, f.URL},
		{ImplementationVendor, f.Vendor},
		{ProjectName, f.Title},
		{Version, f.Version},
		{Maintainer, f.Maintainer},
		{Project, f.Project},
		{ProjectVersion, f.ProjectVersion},
		{CreatedWith, f.CreatedWith},
		{BuiltBy, f.BuiltBy},
		{BuildDate, f.BuildDate},
		{BuildJDK, f.JDK},
		{BuildOSName, f.OSName},
		{BuildOSArch, f.OSArch},
		{BuildOSVersion, f.OSVersion},
	}
	if f.ModuleName != "" {
		entries = append(entries, Attribute{AutomaticModuleName, f.ModuleName})
	}
	return New(entries...)
}
