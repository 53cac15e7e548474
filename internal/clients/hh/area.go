package hh

type Area struct {
	ID       string
	ParentID string
	Name     string
}

type area struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
	Areas    []area  `json:"areas"`
}

func flattenAreas(areas []area) []Area {
	var all []Area

	var collect func(areas []area)
	collect = func(areas []area) {
		for _, a := range areas {
			parentID := ""
			if a.ParentID != nil {
				parentID = *a.ParentID
			}
			all = append(all, Area{ID: a.ID, ParentID: parentID, Name: a.Name})
			collect(a.Areas)
		}
	}
	collect(areas)
	return all
}
