// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package all

import (
	_ "github.com/siemens/ldbengine/dbtype/mongo"    // MongoDB
	_ "github.com/siemens/ldbengine/dbtype/mysql"    // MySQL
	_ "github.com/siemens/ldbengine/dbtype/postgres" // PostgreSQL
	_ "github.com/siemens/ldbengine/dbtype/redis"    // Redis
)
