package directory

import _ "embed"

//go:embed data/customers.json
var embeddedCustomers string
