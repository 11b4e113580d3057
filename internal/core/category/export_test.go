// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

// ClaimSlug exposes slug selection to the external test package.
var ClaimSlug = claimSlug
