package autoload

// Import all middleware subpackages for side-effect registration.
import (
	_ "mcpchat/middlewares/tokenbudget"
	_ "mcpchat/middlewares/toolaudit"
)
