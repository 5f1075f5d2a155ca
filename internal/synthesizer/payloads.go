package synthesizer

// Attack payload batteries for the exception category. One payload is
// picked at random per synthesized case.
var sqlInjectionPayloads = []string{
	"' OR '1'='1",
	"'; DROP TABLE users; --",
	"1' UNION SELECT NULL--",
	"admin'--",
	"1; SELECT * FROM information_schema.tables",
}

var xssPayloads = []string{
	"<script>alert('xss')</script>",
	"<img src=x onerror=alert(1)>",
	"javascript:alert(document.cookie)",
	"<svg/onload=alert('xss')>",
}

// specialCharacters probes encoding and escaping handling.
const specialCharacters = `!@#$%^&*()_+-=[]{}|;':",./<>?~` + "`\\é中文\U0001f600"

// Response substrings that indicate leakage of backend internals.
var sqlLeakageMarkers = []string{"sql", "syntax", "mysql", "database error"}
var xssLeakageMarkers = []string{"<script>"}
