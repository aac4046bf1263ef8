package emulator

// Virtual Display

// VirtualDisplayUpdate carries one 16x16 pixel region: 16 rows of one screen word each.
type VirtualDisplayUpdate struct {
	RegionX int      `json:"region_x"`
	RegionY int      `json:"region_y"`
	Data    []uint16 `json:"data"`
}

func (s *VirtualDisplay) read(offset uint16) uint16 {
	s.dataMutex.Lock()
	defer s.dataMutex.Unlock()
	return s.data[offset]
}

func (s *VirtualDisplay) write(offset, value uint16) {
	s.dataMutex.Lock()
	defer s.dataMutex.Unlock()
	if s.data[offset] == value {
		return
	}
	s.data[offset] = value
	s.updateRegions[s.getUpdateOffset(offset)] = true
	s.displayWrites.Add(1)
}

func (s *VirtualDisplay) getUpdateOffset(dataOffset uint16) int {
	// one region is one word wide and 16 rows tall
	row := int(dataOffset) / wordsPerRow
	col := int(dataOffset) % wordsPerRow
	return (row/16)*wordsPerRow + col
}

// Pixel reports whether the pixel at (x, y) is black.
func (s *VirtualDisplay) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	word := s.read(uint16(y*wordsPerRow + x/16))
	return word&(1<<(x%16)) != 0
}

// Writes counts the screen writes that changed a word, so watchers can tell when to redraw.
func (s *VirtualDisplay) Writes() int64 {
	return s.displayWrites.Load()
}

func (s *VirtualDisplay) GetUpdates() []VirtualDisplayUpdate {
	return s.collectRegions(false)
}

func (s *VirtualDisplay) GetEntireScreen() []VirtualDisplayUpdate {
	return s.collectRegions(true)
}

func (s *VirtualDisplay) collectRegions(all bool) []VirtualDisplayUpdate {
	s.dataMutex.Lock()
	defer s.dataMutex.Unlock()

	updates := make([]VirtualDisplayUpdate, 0)
	for region := range s.updateRegions {
		if !all && !s.updateRegions[region] {
			continue
		}
		col := region % wordsPerRow
		firstRow := (region / wordsPerRow) * 16

		outData := make([]uint16, 16)
		for oy := 0; oy < 16; oy++ {
			outData[oy] = s.data[(firstRow+oy)*wordsPerRow+col]
		}
		updates = append(updates, VirtualDisplayUpdate{
			RegionX: col * 16,
			RegionY: firstRow,
			Data:    outData,
		})
		s.updateRegions[region] = false
	}
	return updates
}
